package feedsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/advising-app/advising-notify/internal/api"
	"github.com/advising-app/advising-notify/internal/domain"
	"github.com/advising-app/advising-notify/internal/ledger"
	"github.com/advising-app/advising-notify/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo      *fakeRepo
	presenter *fakePresenter
	state     *fakeState
	clock     *fakeClock
	sync      *Synchronizer
	changes   int
}

func newFixture(t *testing.T, repo *fakeRepo) *fixture {
	t.Helper()
	f := &fixture{
		repo:      repo,
		presenter: &fakePresenter{},
		state:     &fakeState{},
		clock:     newFakeClock(),
	}
	f.sync = New(Options{
		Repository: repo,
		Presenter:  f.presenter,
		Ledger:     ledger.New(0),
		State:      f.state,
		Now:        f.clock.Now,
		OnChange:   func(Snapshot) { f.changes++ },
	})
	return f
}

func ids(records []domain.Notification) []int64 {
	out := make([]int64, len(records))
	for i, n := range records {
		out[i] = n.ID
	}
	return out
}

func TestBootstrapThenIngestScenario(t *testing.T) {
	repo := newFakeRepo(2, map[int][]domain.Notification{0: {rec(5, false, 1), rec(6, false, 0)}})
	f := newFixture(t, repo)
	ctx := context.Background()

	require.NoError(t, f.sync.Bootstrap(ctx))
	snap := f.sync.Snapshot()
	assert.Equal(t, []int64{5, 6}, ids(snap.Records))
	assert.Equal(t, int64(2), snap.Unread)
	assert.True(t, snap.Exhausted)
	assert.NoError(t, snap.Err)

	f.sync.Ingest(ctx, rec(7, false, 2))
	snap = f.sync.Snapshot()
	assert.Equal(t, []int64{7, 5, 6}, ids(snap.Records))
	assert.Equal(t, int64(3), snap.Unread)
	assert.Equal(t, []int64{7}, f.presenter.IDs())
}

func TestBootstrapRequestsFirstPage(t *testing.T) {
	repo := newFakeRepo(0, nil)
	f := newFixture(t, repo)

	require.NoError(t, f.sync.Bootstrap(context.Background()))
	assert.ElementsMatch(t, []string{"unread-count", "list:0:20"}, repo.Calls())
}

func TestBootstrapFailure(t *testing.T) {
	repo := newFakeRepo(1, map[int][]domain.Notification{0: {rec(1, false, 0)}})
	f := newFixture(t, repo)
	ctx := context.Background()
	require.NoError(t, f.sync.Bootstrap(ctx))

	repo.err = errors.New("network down")
	err := f.sync.Bootstrap(ctx)
	require.Error(t, err)

	snap := f.sync.Snapshot()
	assert.Empty(t, snap.Records)
	assert.EqualError(t, snap.Err, "network down")
	assert.False(t, snap.Loading)

	repo.err = nil
	require.NoError(t, f.sync.Refresh(ctx))
	assert.NoError(t, f.sync.Snapshot().Err)
	assert.Len(t, f.sync.Snapshot().Records, 1)
}

func TestBootstrapDoesNotAlert(t *testing.T) {
	repo := newFakeRepo(1, map[int][]domain.Notification{0: {rec(1, false, 0)}})
	f := newFixture(t, repo)
	require.NoError(t, f.sync.Bootstrap(context.Background()))
	assert.Empty(t, f.presenter.IDs())
}

func TestIngestDuplicateScenario(t *testing.T) {
	f := newFixture(t, newFakeRepo(0, nil))
	ctx := context.Background()

	f.sync.Ingest(ctx, rec(7, false, 0))
	f.sync.Ingest(ctx, rec(7, false, 0))

	snap := f.sync.Snapshot()
	assert.Equal(t, []int64{7}, ids(snap.Records))
	assert.Equal(t, []int64{7}, f.presenter.IDs())
	// both ingests arrived unread
	assert.Equal(t, int64(2), snap.Unread)
}

func TestIngestDistinctIDs(t *testing.T) {
	f := newFixture(t, newFakeRepo(0, nil))
	ctx := context.Background()
	input := []int64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5}
	distinct := map[int64]bool{}
	for _, id := range input {
		f.sync.Ingest(ctx, rec(id, true, 0))
		distinct[id] = true
	}
	assert.Len(t, f.sync.Snapshot().Records, len(distinct))
	assert.Len(t, f.presenter.IDs(), len(distinct))
}

func TestIngestAlertsReadRecords(t *testing.T) {
	f := newFixture(t, newFakeRepo(0, nil))
	f.sync.Ingest(context.Background(), rec(9, true, 0))
	assert.Equal(t, []int64{9}, f.presenter.IDs())
	assert.Equal(t, int64(0), f.sync.Unread())
}

func TestIngestMergesExisting(t *testing.T) {
	repo := newFakeRepo(1, map[int][]domain.Notification{0: {rec(5, false, 1), rec(6, false, 0)}})
	f := newFixture(t, repo)
	ctx := context.Background()
	require.NoError(t, f.sync.Bootstrap(ctx))

	update := rec(6, true, 0)
	update.Title = "Updated"
	f.sync.Ingest(ctx, update)

	snap := f.sync.Snapshot()
	assert.Equal(t, []int64{5, 6}, ids(snap.Records))
	assert.Equal(t, "Updated", snap.Records[1].Title)
	assert.True(t, snap.Records[1].Read)
}

func TestIngestRecordsLastEvent(t *testing.T) {
	f := newFixture(t, newFakeRepo(0, nil))
	f.sync.Ingest(context.Background(), rec(1, false, 0))
	assert.Equal(t, f.clock.Now(), f.sync.Snapshot().LastEvent)
}

func TestTouchKeepsConnectedFeedFresh(t *testing.T) {
	f := newFixture(t, newFakeRepo(0, nil))
	f.state.Set(realtime.StateConnected)
	f.clock.Advance(StalenessWindow + time.Second)
	assert.True(t, f.sync.Stale(), "no event yet")

	f.sync.Touch()
	assert.False(t, f.sync.Stale())
	assert.Empty(t, f.sync.Snapshot().Records)

	ran, err := f.sync.PollReconcile(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Empty(t, f.repo.Calls())
}

func TestMarkRead(t *testing.T) {
	repo := newFakeRepo(2, map[int][]domain.Notification{0: {rec(5, false, 1), rec(6, false, 0)}})
	f := newFixture(t, repo)
	ctx := context.Background()
	require.NoError(t, f.sync.Bootstrap(ctx))

	require.NoError(t, f.sync.MarkRead(ctx, 5))
	snap := f.sync.Snapshot()
	assert.Equal(t, int64(1), snap.Unread)
	assert.True(t, snap.Records[0].Read)
	assert.False(t, snap.Records[1].Read)
	assert.Contains(t, repo.Calls(), "mark-read:5")
}

func TestMarkReadFloorsAtZero(t *testing.T) {
	f := newFixture(t, newFakeRepo(0, nil))
	ctx := context.Background()
	require.NoError(t, f.sync.MarkRead(ctx, 1))
	require.NoError(t, f.sync.MarkRead(ctx, 1))
	assert.Equal(t, int64(0), f.sync.Unread())
}

func TestMarkReadKeepsLocalChangeOnFailure(t *testing.T) {
	repo := newFakeRepo(1, map[int][]domain.Notification{0: {rec(5, false, 0)}})
	f := newFixture(t, repo)
	ctx := context.Background()
	require.NoError(t, f.sync.Bootstrap(ctx))

	repo.err = errors.New("boom")
	require.Error(t, f.sync.MarkRead(ctx, 5))
	snap := f.sync.Snapshot()
	assert.True(t, snap.Records[0].Read)
	assert.Equal(t, int64(0), snap.Unread)
}

func TestLoadMore(t *testing.T) {
	repo := newFakeRepo(0, map[int][]domain.Notification{
		0: fullPage(100),
		1: append(fullPage(119)[:3], rec(500, false, 0)),
	})
	f := newFixture(t, repo)
	ctx := context.Background()
	require.NoError(t, f.sync.Bootstrap(ctx))
	require.False(t, f.sync.Snapshot().Exhausted)

	added, err := f.sync.LoadMore(ctx)
	require.NoError(t, err)
	// 119 is already on page 0
	assert.Equal(t, 3, added)
	snap := f.sync.Snapshot()
	assert.Len(t, snap.Records, PageSize+3)
	assert.Equal(t, []int64{120, 121, 500}, ids(snap.Records[PageSize:]))
	assert.Equal(t, 1, snap.Page)
	assert.True(t, snap.Exhausted)
}

func TestLoadMoreNoRequestWhenExhausted(t *testing.T) {
	repo := newFakeRepo(0, map[int][]domain.Notification{0: {rec(1, false, 0)}})
	f := newFixture(t, repo)
	ctx := context.Background()
	require.NoError(t, f.sync.Bootstrap(ctx))
	before := repo.ListRequests()

	added, err := f.sync.LoadMore(ctx)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Equal(t, before, repo.ListRequests())
}

func TestLoadMoreNoRequestWhileInFlight(t *testing.T) {
	repo := newFakeRepo(0, map[int][]domain.Notification{0: fullPage(1), 1: fullPage(100)})
	f := newFixture(t, repo)
	ctx := context.Background()
	require.NoError(t, f.sync.Bootstrap(ctx))
	require.Equal(t, 1, repo.ListRequests())

	hold := repo.holdLaterPages()
	type result struct {
		added int
		err   error
	}
	first := make(chan result, 1)
	go func() {
		added, err := f.sync.LoadMore(ctx)
		first <- result{added, err}
	}()
	assert.Equal(t, 1, <-hold.entered)
	assert.True(t, f.sync.Snapshot().Loading)

	added, err := f.sync.LoadMore(ctx)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Empty(t, hold.entered, "second load must not reach the repository")

	close(hold.release)
	r := <-first
	require.NoError(t, r.err)
	assert.Equal(t, PageSize, r.added)
	assert.Equal(t, 2, repo.ListRequests())
	assert.Equal(t, 1, f.sync.Snapshot().Page)
	assert.Len(t, f.sync.Snapshot().Records, 2*PageSize)
}

func TestLoadMoreFailureKeepsCursor(t *testing.T) {
	repo := newFakeRepo(0, map[int][]domain.Notification{0: fullPage(1)})
	f := newFixture(t, repo)
	ctx := context.Background()
	require.NoError(t, f.sync.Bootstrap(ctx))

	repo.listErr = errors.New("timeout")
	_, err := f.sync.LoadMore(ctx)
	require.Error(t, err)
	assert.Equal(t, 0, f.sync.Snapshot().Page)
	assert.False(t, f.sync.Snapshot().Loading)
}

func TestPollReconcileSkipsWhenFresh(t *testing.T) {
	repo := newFakeRepo(0, nil)
	f := newFixture(t, repo)
	ctx := context.Background()
	f.state.Set(realtime.StateConnected)
	f.sync.Ingest(ctx, rec(1, false, 0))
	f.clock.Advance(10 * time.Second)

	ran, err := f.sync.PollReconcile(ctx)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Zero(t, repo.ListRequests())
}

func TestPollReconcileRunsWhenStale(t *testing.T) {
	repo := newFakeRepo(0, nil)
	f := newFixture(t, repo)
	ctx := context.Background()
	f.state.Set(realtime.StateConnected)
	f.sync.Ingest(ctx, rec(1, false, 0))
	f.clock.Advance(StalenessWindow + time.Second)

	ran, err := f.sync.PollReconcile(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestPollReconcileRunsWhenDisconnected(t *testing.T) {
	for _, st := range []realtime.State{realtime.StateIdle, realtime.StateConnecting, realtime.StateError} {
		t.Run(st.String(), func(t *testing.T) {
			repo := newFakeRepo(0, nil)
			f := newFixture(t, repo)
			f.state.Set(st)
			f.sync.Ingest(context.Background(), rec(1, false, 0))

			ran, err := f.sync.PollReconcile(context.Background())
			require.NoError(t, err)
			assert.True(t, ran)
		})
	}
}

func TestPollReconcileMergesSortsAndAlerts(t *testing.T) {
	repo := newFakeRepo(0, nil)
	f := newFixture(t, repo)
	ctx := context.Background()

	// real-time order is arrival order, not createdAt order
	f.sync.Ingest(ctx, rec(2, false, 10))
	f.sync.Ingest(ctx, rec(1, false, 30))
	require.Equal(t, []int64{2, 1}, f.presenter.IDs())

	fetched2 := rec(2, true, 10)
	fetched2.Title = "Server title"
	repo.set(3, []domain.Notification{rec(4, false, 40), fetched2, rec(3, false, 20)})

	ran, err := f.sync.PollReconcile(ctx)
	require.NoError(t, err)
	require.True(t, ran)

	snap := f.sync.Snapshot()
	assert.Equal(t, []int64{4, 1, 3, 2}, ids(snap.Records))
	assert.True(t, domain.IsSortedByCreatedAtDesc(snap.Records))
	assert.Equal(t, int64(3), snap.Unread)
	assert.Equal(t, "Server title", snap.Records[3].Title)
	assert.True(t, snap.Records[3].Read)
	assert.Equal(t, []int64{2, 1, 4, 3}, f.presenter.IDs())
}

func TestPollReconcileDoesNotRealertLedgerIDs(t *testing.T) {
	repo := newFakeRepo(0, nil)
	f := newFixture(t, repo)
	ctx := context.Background()

	f.sync.Ingest(ctx, rec(8, false, 0))
	require.NoError(t, f.sync.DeleteBatch(ctx, []int64{8}))
	repo.set(1, []domain.Notification{rec(8, false, 0)})

	_, err := f.sync.PollReconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{8}, f.presenter.IDs())
	assert.Equal(t, []int64{8}, ids(f.sync.Snapshot().Records))
}

func TestPollReconcileError(t *testing.T) {
	repo := newFakeRepo(0, map[int][]domain.Notification{0: {rec(1, false, 0)}})
	f := newFixture(t, repo)
	ctx := context.Background()
	require.NoError(t, f.sync.Bootstrap(ctx))

	repo.err = errors.New("offline")
	ran, err := f.sync.PollReconcile(ctx)
	assert.True(t, ran)
	require.Error(t, err)
	assert.Len(t, f.sync.Snapshot().Records, 1)
}

func TestMarkAllRead(t *testing.T) {
	repo := newFakeRepo(2, map[int][]domain.Notification{0: {rec(1, false, 1), rec(2, false, 0)}})
	f := newFixture(t, repo)
	ctx := context.Background()
	require.NoError(t, f.sync.Bootstrap(ctx))

	require.NoError(t, f.sync.MarkAllRead(ctx))
	snap := f.sync.Snapshot()
	assert.Zero(t, snap.Unread)
	for _, n := range snap.Records {
		assert.True(t, n.Read)
	}
	assert.Contains(t, repo.Calls(), "mark-all-read")
}

func TestMarkReadBatch(t *testing.T) {
	repo := newFakeRepo(3, map[int][]domain.Notification{0: {rec(1, false, 2), rec(2, true, 1), rec(3, false, 0)}})
	f := newFixture(t, repo)
	ctx := context.Background()
	require.NoError(t, f.sync.Bootstrap(ctx))

	require.NoError(t, f.sync.MarkReadBatch(ctx, []int64{1, 2}))
	assert.Equal(t, int64(2), f.sync.Unread())
	assert.Contains(t, repo.Calls(), "mark-read-batch:[1 2]")

	before := len(repo.Calls())
	require.NoError(t, f.sync.MarkReadBatch(ctx, nil))
	assert.Len(t, repo.Calls(), before)
}

func TestDelete(t *testing.T) {
	repo := newFakeRepo(2, map[int][]domain.Notification{0: {rec(1, false, 2), rec(2, true, 1), rec(3, false, 0)}})
	f := newFixture(t, repo)
	ctx := context.Background()
	require.NoError(t, f.sync.Bootstrap(ctx))

	require.NoError(t, f.sync.Delete(ctx, 1))
	assert.Equal(t, []int64{2, 3}, ids(f.sync.Snapshot().Records))
	assert.Equal(t, int64(1), f.sync.Unread())

	require.NoError(t, f.sync.DeleteBatch(ctx, []int64{2, 3}))
	assert.Empty(t, f.sync.Snapshot().Records)
	assert.Zero(t, f.sync.Unread())
	assert.Contains(t, repo.Calls(), "delete:1")
	assert.Contains(t, repo.Calls(), "delete-batch:[2 3]")
}

func TestTestAlert(t *testing.T) {
	f := newFixture(t, newFakeRepo(0, nil))
	require.NoError(t, f.sync.TestAlert(context.Background()))

	require.Len(t, f.presenter.shown, 1)
	shown := f.presenter.shown[0]
	assert.Equal(t, TestAlertTitle, shown.Title)
	assert.Equal(t, TestAlertMessage, shown.Message)
	assert.Equal(t, TestAlertType, shown.Type)
	assert.Equal(t, f.clock.Now().UnixMilli(), shown.ID)
	assert.Empty(t, f.sync.Snapshot().Records)
	assert.Zero(t, f.sync.ledger.Len())
}

func TestOnChangeIsCalled(t *testing.T) {
	f := newFixture(t, newFakeRepo(0, nil))
	f.sync.Ingest(context.Background(), rec(1, false, 0))
	assert.Positive(t, f.changes)
}

func TestNewPanicsWithoutRepository(t *testing.T) {
	assert.Panics(t, func() { New(Options{}) })
}

var _ Repository = (*api.Client)(nil)
