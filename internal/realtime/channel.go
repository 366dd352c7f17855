// Package realtime keeps one STOMP subscription to the per-user
// notification queue alive and reports its connection state.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/advising-app/advising-notify/internal/colors"
	"github.com/advising-app/advising-notify/internal/domain"
	"github.com/advising-app/advising-notify/internal/logging"
)

// ErrNoToken is returned by Connect when no credential is given.
var ErrNoToken = errors.New("realtime: no bearer token")

// DefaultRetryDelay is the fixed delay between transport attempts.
const DefaultRetryDelay = 5 * time.Second

// Options configures a Channel.
type Options struct {
	// RetryDelay between transport attempts while active. Zero means DefaultRetryDelay.
	RetryDelay time.Duration
	// OnFrame runs for every received frame before it is decoded, so
	// malformed frames still count as activity.
	OnFrame func()
	// OnMessage receives every decoded record.
	OnMessage func(domain.Notification)
	// OnConnected runs each time a session comes up.
	OnConnected func()
	// OnState observes every state transition.
	OnState func(State)
	Logger  logging.Logger
}

// Channel owns at most one active connection run. Hooks are called from
// the run goroutine and must not block for long.
type Channel struct {
	dialer Dialer
	opts   Options
	logger logging.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an idle channel.
func New(dialer Dialer, opts Options) *Channel {
	if dialer == nil {
		panic("realtime.New: dialer is nil")
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Channel{dialer: dialer, opts: opts, logger: logger.With("component", "realtime")}
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect tears down any existing run and starts a fresh one with token.
// The state becomes connecting immediately.
func (c *Channel) Connect(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoToken
	}
	c.stop()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.mu.Lock()
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	c.setState(StateConnecting)
	go c.run(runCtx, token, done)
	return nil
}

// Disconnect stops the current run and leaves the channel idle.
func (c *Channel) Disconnect() {
	c.stop()
	c.setState(StateIdle)
}

// stop cancels the current run and waits for it to exit.
func (c *Channel) stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	prev := c.state
	c.state = s
	c.mu.Unlock()

	c.logger.Debug("state changed", "from", prev.String(), "to", s.String())
	if c.opts.OnState != nil {
		c.opts.OnState(s)
	}
}

// run retries the transport with a fixed delay until ctx is cancelled.
// Retries keep the current state; only Connect moves to connecting.
func (c *Channel) run(ctx context.Context, token string, done chan struct{}) {
	defer close(done)
	for attempt := 1; ; attempt++ {
		err := c.session(ctx, token)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			c.setState(StateIdle)
		} else {
			c.setState(StateError)
			colors.StructuredWarn("realtime", "session", "failed", err, "", map[string]interface{}{"attempt": attempt})
		}

		timer := time.NewTimer(c.opts.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// session dials once and pumps messages until the session ends.
// A clean close returns nil.
func (c *Channel) session(ctx context.Context, token string) error {
	sess, err := c.dialer.Dial(ctx, token)
	if err != nil {
		return err
	}
	defer sess.Close()

	c.setState(StateConnected)
	c.logger.Info("connected")
	if c.opts.OnConnected != nil {
		c.opts.OnConnected()
	}

	for {
		body, err := sess.Next(ctx)
		if errors.Is(err, io.EOF) {
			c.logger.Info("session closed by server")
			return nil
		}
		if err != nil {
			return err
		}
		c.deliver(body)
	}
}

// deliver decodes one message body. Malformed bodies are logged and dropped.
func (c *Channel) deliver(body []byte) {
	if c.opts.OnFrame != nil {
		c.opts.OnFrame()
	}
	var n domain.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		c.logger.Warn("dropping malformed message", "error", err, "size", len(body))
		return
	}
	if err := n.Validate(); err != nil {
		c.logger.Warn("dropping invalid message", "error", err)
		return
	}
	if c.opts.OnMessage != nil {
		c.opts.OnMessage(n)
	}
}
