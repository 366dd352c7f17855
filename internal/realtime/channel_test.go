package realtime

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/advising-app/advising-notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	msgs   chan []byte
	end    chan error
	closed chan struct{}
	once   sync.Once
}

func newFakeSession() *fakeSession {
	return &fakeSession{msgs: make(chan []byte, 8), end: make(chan error, 1), closed: make(chan struct{})}
}

func (s *fakeSession) Next(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-s.end:
		return nil, err
	case b := <-s.msgs:
		return b, nil
	}
}

func (s *fakeSession) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

// fakeDialer hands out scripted results in order, then blocks failures.
type fakeDialer struct {
	mu      sync.Mutex
	results []dialResult
	tokens  []string
	calls   chan string
}

type dialResult struct {
	session *fakeSession
	err     error
}

func newFakeDialer(results ...dialResult) *fakeDialer {
	return &fakeDialer{results: results, calls: make(chan string, 16)}
}

func (d *fakeDialer) Dial(ctx context.Context, token string) (Session, error) {
	d.mu.Lock()
	d.tokens = append(d.tokens, token)
	var r dialResult
	if len(d.results) > 0 {
		r = d.results[0]
		d.results = d.results[1:]
	} else {
		r = dialResult{err: errors.New("no more scripted dials")}
	}
	d.mu.Unlock()
	d.calls <- token
	if r.err != nil {
		return nil, r.err
	}
	return r.session, nil
}

type stateRecorder struct {
	mu     sync.Mutex
	states []State
	ch     chan State
}

func newStateRecorder() *stateRecorder {
	return &stateRecorder{ch: make(chan State, 32)}
}

func (r *stateRecorder) record(s State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
	r.ch <- s
}

func (r *stateRecorder) waitFor(t *testing.T, want State) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-r.ch:
			if s == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s", want)
		}
	}
}

func (r *stateRecorder) all() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func TestConnectRequiresToken(t *testing.T) {
	ch := New(newFakeDialer(), Options{})

	require.ErrorIs(t, ch.Connect(context.Background(), ""), ErrNoToken)
	assert.Equal(t, StateIdle, ch.State())
}

func TestConnectDeliversMessages(t *testing.T) {
	sess := newFakeSession()
	dialer := newFakeDialer(dialResult{session: sess})
	rec := newStateRecorder()
	got := make(chan domain.Notification, 4)
	connected := make(chan struct{}, 1)
	var frames atomic.Int32
	ch := New(dialer, Options{
		OnFrame:     func() { frames.Add(1) },
		OnMessage:   func(n domain.Notification) { got <- n },
		OnConnected: func() { connected <- struct{}{} },
		OnState:     rec.record,
	})
	defer ch.Disconnect()

	require.NoError(t, ch.Connect(context.Background(), "tok"))
	rec.waitFor(t, StateConnected)
	<-connected
	dialer.mu.Lock()
	assert.Equal(t, []string{"tok"}, dialer.tokens)
	dialer.mu.Unlock()

	sess.msgs <- []byte(`not json`)
	sess.msgs <- []byte(`{"id": 0, "title": "missing id"}`)
	sess.msgs <- []byte(`{"id": 9, "title": "Hello", "read": false, "createdAt": "2025-01-01T00:00:00"}`)

	select {
	case n := <-got:
		assert.Equal(t, int64(9), n.ID)
		assert.Equal(t, "Hello", n.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
	assert.Empty(t, got, "malformed messages are dropped")
	assert.Equal(t, int32(3), frames.Load(), "every frame counts as activity")
	assert.Equal(t, []State{StateConnecting, StateConnected}, rec.all())
}

func TestTransportErrorMovesToErrorAndRetries(t *testing.T) {
	sess := newFakeSession()
	dialer := newFakeDialer(
		dialResult{err: errors.New("connection refused")},
		dialResult{session: sess},
	)
	rec := newStateRecorder()
	ch := New(dialer, Options{RetryDelay: 10 * time.Millisecond, OnState: rec.record})
	defer ch.Disconnect()

	require.NoError(t, ch.Connect(context.Background(), "tok"))
	rec.waitFor(t, StateError)
	rec.waitFor(t, StateConnected)

	// the transport retry does not pass through connecting again
	assert.Equal(t, []State{StateConnecting, StateError, StateConnected}, rec.all())
}

func TestCleanCloseMovesToIdle(t *testing.T) {
	sess := newFakeSession()
	dialer := newFakeDialer(dialResult{session: sess})
	rec := newStateRecorder()
	ch := New(dialer, Options{RetryDelay: time.Hour, OnState: rec.record})
	defer ch.Disconnect()

	require.NoError(t, ch.Connect(context.Background(), "tok"))
	rec.waitFor(t, StateConnected)

	sess.end <- io.EOF
	rec.waitFor(t, StateIdle)
	<-sess.closed
}

func TestSessionErrorMovesToError(t *testing.T) {
	sess := newFakeSession()
	dialer := newFakeDialer(dialResult{session: sess})
	rec := newStateRecorder()
	ch := New(dialer, Options{RetryDelay: time.Hour, OnState: rec.record})
	defer ch.Disconnect()

	require.NoError(t, ch.Connect(context.Background(), "tok"))
	rec.waitFor(t, StateConnected)

	sess.end <- errors.New("heartbeat timeout")
	rec.waitFor(t, StateError)
	assert.Equal(t, StateError, ch.State())
}

func TestReconnectReplacesRun(t *testing.T) {
	first, second := newFakeSession(), newFakeSession()
	dialer := newFakeDialer(dialResult{session: first}, dialResult{session: second})
	rec := newStateRecorder()
	ch := New(dialer, Options{OnState: rec.record})
	defer ch.Disconnect()

	require.NoError(t, ch.Connect(context.Background(), "old"))
	rec.waitFor(t, StateConnected)

	require.NoError(t, ch.Connect(context.Background(), "new"))
	<-first.closed
	rec.waitFor(t, StateConnected)

	dialer.mu.Lock()
	assert.Equal(t, []string{"old", "new"}, dialer.tokens)
	dialer.mu.Unlock()
}

func TestDisconnect(t *testing.T) {
	sess := newFakeSession()
	ch := New(newFakeDialer(dialResult{session: sess}), Options{})
	require.NoError(t, ch.Connect(context.Background(), "tok"))

	require.Eventually(t, func() bool { return ch.State() == StateConnected }, 2*time.Second, 5*time.Millisecond)
	ch.Disconnect()

	assert.Equal(t, StateIdle, ch.State())
	<-sess.closed
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "error", StateError.String())
	assert.Equal(t, "unknown", State(42).String())
}
