package feedsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/advising-app/advising-notify/internal/api"
	"github.com/advising-app/advising-notify/internal/domain"
	"github.com/advising-app/advising-notify/internal/realtime"
)

type fakeRepo struct {
	mu       sync.Mutex
	unread   int64
	pages    map[int][]domain.Notification
	err      error
	listErr  error
	calls    []string
	listReqs []api.ListOptions
	hold     *listHold
}

// listHold parks List calls for pages after the first until released.
type listHold struct {
	entered chan int
	release chan struct{}
}

func (f *fakeRepo) holdLaterPages() *listHold {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hold = &listHold{entered: make(chan int, 4), release: make(chan struct{})}
	return f.hold
}

func newFakeRepo(unread int64, pages map[int][]domain.Notification) *fakeRepo {
	if pages == nil {
		pages = map[int][]domain.Notification{}
	}
	return &fakeRepo{unread: unread, pages: pages}
}

func (f *fakeRepo) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeRepo) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRepo) ListRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listReqs)
}

func (f *fakeRepo) set(unread int64, page0 []domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unread = unread
	f.pages[0] = page0
}

func (f *fakeRepo) UnreadCount(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("unread-count")
	return f.unread, f.err
}

func (f *fakeRepo) List(ctx context.Context, opts api.ListOptions) (api.Page, error) {
	f.mu.Lock()
	hold := f.hold
	f.mu.Unlock()
	if hold != nil && opts.Page > 0 {
		hold.entered <- opts.Page
		<-hold.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("list:%d:%d", opts.Page, opts.Size))
	f.listReqs = append(f.listReqs, opts)
	if f.err != nil {
		return api.Page{}, f.err
	}
	if f.listErr != nil {
		return api.Page{}, f.listErr
	}
	content := append([]domain.Notification{}, f.pages[opts.Page]...)
	return api.Page{Content: content, Number: opts.Page}, nil
}

func (f *fakeRepo) MarkRead(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("mark-read:%d", id))
	return f.err
}

func (f *fakeRepo) MarkAllRead(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("mark-all-read")
	return f.err
}

func (f *fakeRepo) MarkReadBatch(ctx context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("mark-read-batch:%v", ids))
	return f.err
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("delete:%d", id))
	return f.err
}

func (f *fakeRepo) DeleteBatch(ctx context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("delete-batch:%v", ids))
	return f.err
}

type fakePresenter struct {
	mu    sync.Mutex
	shown []domain.Notification
}

func (p *fakePresenter) Present(ctx context.Context, n domain.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shown = append(p.shown, n)
	return nil
}

func (p *fakePresenter) IDs() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]int64, len(p.shown))
	for i, n := range p.shown {
		ids[i] = n.ID
	}
	return ids
}

type fakeState struct {
	mu    sync.Mutex
	state realtime.State
}

func (s *fakeState) State() realtime.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *fakeState) Set(st realtime.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// rec builds a record created minutesAgo before the fake clock's start.
func rec(id int64, read bool, minute int) domain.Notification {
	return domain.Notification{
		ID:        id,
		Type:      "APPOINTMENT",
		Title:     fmt.Sprintf("Notification %d", id),
		Message:   "message",
		CreatedAt: time.Date(2026, 3, 1, 8, minute, 0, 0, time.UTC).Format(time.RFC3339),
		Read:      read,
	}
}

func fullPage(startID int64) []domain.Notification {
	page := make([]domain.Notification, PageSize)
	for i := range page {
		page[i] = rec(startID+int64(i), false, 59-i%60)
	}
	return page
}
