// Package feedsync keeps the in-memory notification feed and unread count
// consistent across the REST repository, the real-time channel and the
// polling fallback, and decides when a local alert is raised.
package feedsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/advising-app/advising-notify/internal/api"
	"github.com/advising-app/advising-notify/internal/domain"
	"github.com/advising-app/advising-notify/internal/ledger"
	"github.com/advising-app/advising-notify/internal/logging"
	"github.com/advising-app/advising-notify/internal/realtime"
	"golang.org/x/sync/errgroup"
)

const (
	// PageSize is the fixed page size of every list request.
	PageSize = api.DefaultPageSize
	// StalenessWindow is how long the channel may stay silent before the
	// poll fallback runs even while connected.
	StalenessWindow = 30 * time.Second
)

// Test alert contents.
const (
	TestAlertType    = "TEST"
	TestAlertTitle   = "Test Local Notification"
	TestAlertMessage = "This is a manual test notification"
)

// Repository is the remote notification store.
type Repository interface {
	UnreadCount(ctx context.Context) (int64, error)
	List(ctx context.Context, opts api.ListOptions) (api.Page, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) error
	MarkReadBatch(ctx context.Context, ids []int64) error
	Delete(ctx context.Context, id int64) error
	DeleteBatch(ctx context.Context, ids []int64) error
}

// Presenter raises a local alert.
type Presenter interface {
	Present(ctx context.Context, n domain.Notification) error
}

// StateSource reports the real-time channel state.
type StateSource interface {
	State() realtime.State
}

// Snapshot is a consistent copy of the synchronizer state.
type Snapshot struct {
	Records   []domain.Notification
	Unread    int64
	Page      int
	Loading   bool
	Exhausted bool
	Err       error
	LastEvent time.Time
}

// Options configures a Synchronizer.
type Options struct {
	Repository Repository
	Presenter  Presenter
	Ledger     *ledger.Ledger
	// State is consulted by PollReconcile. Nil counts as not connected.
	State StateSource
	// Now defaults to time.Now.
	Now func() time.Time
	// OnChange observes the state after every feed mutation. It runs
	// outside the lock.
	OnChange func(Snapshot)
	Logger   logging.Logger
}

// Synchronizer owns the feed. It is safe for concurrent use; network
// calls run outside the lock, so concurrent writers race with last
// writer wins.
type Synchronizer struct {
	repo      Repository
	presenter Presenter
	ledger    *ledger.Ledger
	state     StateSource
	now       func() time.Time
	onChange  func(Snapshot)
	logger    logging.Logger

	mu          sync.Mutex
	feed        *domain.Feed
	unread      int64
	page        int
	exhausted   bool
	loading     bool
	loadingMore bool
	err         error
	lastEvent   time.Time
}

// New creates a Synchronizer with an empty feed.
func New(opts Options) *Synchronizer {
	if opts.Repository == nil {
		panic("feedsync.New: repository dependency cannot be nil")
	}
	if opts.Ledger == nil {
		opts.Ledger = ledger.New(0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Synchronizer{
		repo:      opts.Repository,
		presenter: opts.Presenter,
		ledger:    opts.Ledger,
		state:     opts.State,
		now:       opts.Now,
		onChange:  opts.OnChange,
		logger:    logger.With("component", "feedsync"),
		feed:      domain.NewFeed(nil),
	}
}

// Snapshot returns a copy of the current state.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Synchronizer) snapshotLocked() Snapshot {
	return Snapshot{
		Records:   s.feed.Records(),
		Unread:    s.unread,
		Page:      s.page,
		Loading:   s.loading || s.loadingMore,
		Exhausted: s.exhausted,
		Err:       s.err,
		LastEvent: s.lastEvent,
	}
}

// Empty reports whether the feed holds no records.
func (s *Synchronizer) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.Len() == 0
}

// Unread returns the unread counter.
func (s *Synchronizer) Unread() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

func (s *Synchronizer) changed() {
	if s.onChange == nil {
		return
	}
	s.onChange(s.Snapshot())
}

// fetchFirstPage requests the unread count and page 0 concurrently.
func (s *Synchronizer) fetchFirstPage(ctx context.Context) (int64, []domain.Notification, error) {
	var (
		count int64
		page  api.Page
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.UnreadCount(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		page, err = s.repo.List(gctx, api.ListOptions{Page: 0, Size: PageSize})
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}
	return count, page.Content, nil
}

// Bootstrap replaces the feed and unread count with the first page.
// On failure the feed is emptied and the error is kept in the snapshot.
func (s *Synchronizer) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	count, records, err := s.fetchFirstPage(ctx)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.feed = domain.NewFeed(nil)
		s.err = err
		s.mu.Unlock()
		s.logger.Warn("bootstrap failed", "error", err)
		s.changed()
		return fmt.Errorf("bootstrap: %w", err)
	}
	s.unread = count
	s.feed = domain.NewFeed(records)
	s.page = 0
	s.exhausted = len(records) < PageSize
	s.err = nil
	s.mu.Unlock()

	s.logger.Debug("bootstrap completed", "unread", count, "records", len(records))
	s.changed()
	return nil
}

// Refresh reloads the first page. It is Bootstrap under the name the
// pull-to-refresh gesture uses.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	return s.Bootstrap(ctx)
}

// LoadMore appends the next page. It issues no request once a page came
// back short or while another load is in flight. It returns the number
// of records appended.
func (s *Synchronizer) LoadMore(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.exhausted || s.loading || s.loadingMore {
		s.mu.Unlock()
		return 0, nil
	}
	s.loadingMore = true
	next := s.page + 1
	s.mu.Unlock()

	page, err := s.repo.List(ctx, api.ListOptions{Page: next, Size: PageSize})

	s.mu.Lock()
	s.loadingMore = false
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("load more failed", "page", next, "error", err)
		return 0, fmt.Errorf("load page %d: %w", next, err)
	}
	added := s.feed.AppendMissing(page.Content)
	s.page = next
	if len(page.Content) < PageSize {
		s.exhausted = true
	}
	s.mu.Unlock()

	s.changed()
	return added, nil
}

// MarkRead flips the record locally, decrements the unread counter
// (never below zero) and then calls the repository. The local change is
// kept when the remote call fails.
func (s *Synchronizer) MarkRead(ctx context.Context, id int64) error {
	s.mu.Lock()
	s.feed.MarkRead(id)
	s.decrementLocked(1)
	s.mu.Unlock()
	s.changed()

	if err := s.repo.MarkRead(ctx, id); err != nil {
		s.logger.Warn("mark read failed", "id", id, "error", err)
		return fmt.Errorf("mark %d read: %w", id, err)
	}
	return nil
}

// MarkAllRead flips every record and zeroes the counter before calling
// the repository.
func (s *Synchronizer) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	s.feed.MarkAllRead()
	s.unread = 0
	s.mu.Unlock()
	s.changed()

	if err := s.repo.MarkAllRead(ctx); err != nil {
		s.logger.Warn("mark all read failed", "error", err)
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

// MarkReadBatch flips the given records and decrements the counter by the
// number that were unread locally.
func (s *Synchronizer) MarkReadBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	flipped := 0
	for _, id := range ids {
		if _, changed := s.feed.MarkRead(id); changed {
			flipped++
		}
	}
	s.decrementLocked(int64(flipped))
	s.mu.Unlock()
	s.changed()

	if err := s.repo.MarkReadBatch(ctx, ids); err != nil {
		s.logger.Warn("mark read batch failed", "count", len(ids), "error", err)
		return fmt.Errorf("mark %d read: %w", len(ids), err)
	}
	return nil
}

// Delete removes a record locally and remotely.
func (s *Synchronizer) Delete(ctx context.Context, id int64) error {
	s.removeLocal(id)
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete failed", "id", id, "error", err)
		return fmt.Errorf("delete %d: %w", id, err)
	}
	return nil
}

// DeleteBatch removes records locally and remotely.
func (s *Synchronizer) DeleteBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	s.removeLocal(ids...)
	if err := s.repo.DeleteBatch(ctx, ids); err != nil {
		s.logger.Warn("delete batch failed", "count", len(ids), "error", err)
		return fmt.Errorf("delete %d notifications: %w", len(ids), err)
	}
	return nil
}

func (s *Synchronizer) removeLocal(ids ...int64) {
	s.mu.Lock()
	_, unread := s.feed.Remove(ids...)
	s.decrementLocked(int64(unread))
	s.mu.Unlock()
	s.changed()
}

func (s *Synchronizer) decrementLocked(n int64) {
	s.unread -= n
	if s.unread < 0 {
		s.unread = 0
	}
}

// Ingest merges a pushed record into the feed. A new record is
// prepended. The counter grows whenever the incoming record is unread.
// The first ingest of an id raises an alert, whatever its read flag.
func (s *Synchronizer) Ingest(ctx context.Context, n domain.Notification) {
	s.mu.Lock()
	s.feed.Upsert(n)
	if !n.Read {
		s.unread++
	}
	s.lastEvent = s.now()
	s.mu.Unlock()
	s.changed()

	if !s.ledger.MarkIfNew(n.ID) {
		s.logger.Debug("skip local alert duplicate id", "id", n.ID)
		return
	}
	s.logger.Info("triggering local alert", "id", n.ID, "read", n.Read)
	s.present(ctx, n)
}

// Touch records real-time activity for the staleness check without
// changing the feed.
func (s *Synchronizer) Touch() {
	s.mu.Lock()
	s.lastEvent = s.now()
	s.mu.Unlock()
}

// Stale reports whether the poll fallback should run: the channel is
// not connected or no event arrived within the staleness window.
func (s *Synchronizer) Stale() bool {
	connected := s.state != nil && s.state.State() == realtime.StateConnected
	s.mu.Lock()
	last := s.lastEvent
	s.mu.Unlock()
	return !connected || s.now().Sub(last) > StalenessWindow
}

// PollReconcile re-fetches the first page when Stale, merges it over the
// feed, re-sorts newest first and alerts ids seen for the first time. It
// reports whether a fetch happened.
func (s *Synchronizer) PollReconcile(ctx context.Context) (bool, error) {
	if !s.Stale() {
		return false, nil
	}

	count, records, err := s.fetchFirstPage(ctx)
	if err != nil {
		s.logger.Warn("polling fallback error", "error", err)
		return true, fmt.Errorf("poll: %w", err)
	}

	s.mu.Lock()
	s.unread = count
	discovered := s.feed.Reconcile(records)
	s.mu.Unlock()
	s.changed()

	for _, n := range discovered {
		if !s.ledger.MarkIfNew(n.ID) {
			continue
		}
		s.logger.Info("polling discovered new id", "id", n.ID)
		s.present(ctx, n)
	}
	return true, nil
}

// TestAlert presents a synthetic alert. The feed and ledger are untouched.
func (s *Synchronizer) TestAlert(ctx context.Context) error {
	if s.presenter == nil {
		return errors.New("no alert presenter configured")
	}
	now := s.now()
	return s.presenter.Present(ctx, domain.Notification{
		ID:        now.UnixMilli(),
		Type:      TestAlertType,
		Title:     TestAlertTitle,
		Message:   TestAlertMessage,
		CreatedAt: now.UTC().Format(time.RFC3339Nano),
	})
}

func (s *Synchronizer) present(ctx context.Context, n domain.Notification) {
	if s.presenter == nil {
		return
	}
	if err := s.presenter.Present(ctx, n); err != nil {
		s.logger.Debug("local alert not shown", "id", n.ID, "error", err)
	}
}
