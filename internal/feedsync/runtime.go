package feedsync

import (
	"context"
	"time"

	"github.com/advising-app/advising-notify/internal/logging"
	"github.com/advising-app/advising-notify/internal/realtime"
	"github.com/advising-app/advising-notify/internal/storage"
)

// Default timer intervals.
const (
	DefaultCredentialPoll = 3 * time.Second
	DefaultErrorRetry     = 15 * time.Second
	DefaultReconcilePoll  = 5 * time.Second
)

// TokenSource reads the stored credential.
type TokenSource interface {
	Get(key string) (string, error)
}

// Connector is the real-time channel as seen by the Runtime.
type Connector interface {
	State() realtime.State
	Connect(ctx context.Context, token string) error
	Disconnect()
}

// RuntimeOptions configures a Runtime. Tick channels replace the
// matching ticker when set.
type RuntimeOptions struct {
	CredentialPoll time.Duration
	ErrorRetry     time.Duration
	ReconcilePoll  time.Duration

	CredentialTicks <-chan time.Time
	ReconcileTicks  <-chan time.Time
	// After arms the error retry timer. Defaults to time.After.
	After func(time.Duration) <-chan time.Time

	// SkipInitialBootstrap leaves the feed empty until the first
	// credential or connection event.
	SkipInitialBootstrap bool
	Logger               logging.Logger
}

// Runtime drives the synchronizer and the channel from three timers: the
// credential poll, the error retry and the reconcile poll.
type Runtime struct {
	sync    *Synchronizer
	channel Connector
	tokens  TokenSource
	opts    RuntimeOptions
	logger  logging.Logger

	connected chan struct{}
	states    chan realtime.State
	reconnect chan struct{}

	lastToken string
}

// NewRuntime creates a Runtime. Wire NotifyConnected and NotifyState into
// the channel's hooks.
func NewRuntime(s *Synchronizer, channel Connector, tokens TokenSource, opts RuntimeOptions) *Runtime {
	if s == nil || channel == nil || tokens == nil {
		panic("feedsync.NewRuntime: dependencies cannot be nil")
	}
	if opts.CredentialPoll <= 0 {
		opts.CredentialPoll = DefaultCredentialPoll
	}
	if opts.ErrorRetry <= 0 {
		opts.ErrorRetry = DefaultErrorRetry
	}
	if opts.ReconcilePoll <= 0 {
		opts.ReconcilePoll = DefaultReconcilePoll
	}
	if opts.After == nil {
		opts.After = time.After
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Runtime{
		sync:      s,
		channel:   channel,
		tokens:    tokens,
		opts:      opts,
		logger:    logger.With("component", "runtime"),
		connected: make(chan struct{}, 1),
		states:    make(chan realtime.State, 16),
		reconnect: make(chan struct{}, 1),
	}
}

// NotifyConnected records that a session came up. Safe to call from the
// channel goroutine; it never blocks.
func (r *Runtime) NotifyConnected() {
	select {
	case r.connected <- struct{}{}:
	default:
	}
}

// NotifyState records a channel state transition. It never blocks; when
// the buffer is full the oldest pending state is dropped.
func (r *Runtime) NotifyState(s realtime.State) {
	for {
		select {
		case r.states <- s:
			return
		default:
		}
		select {
		case <-r.states:
		default:
		}
	}
}

// Reconnect asks the loop to reconnect with the stored credential.
func (r *Runtime) Reconnect() {
	select {
	case r.reconnect <- struct{}{}:
	default:
	}
}

func tickSource(ch <-chan time.Time, d time.Duration) (<-chan time.Time, func()) {
	if ch != nil {
		return ch, func() {}
	}
	ticker := time.NewTicker(d)
	return ticker.C, ticker.Stop
}

// Run loops until ctx is done, then disconnects the channel.
func (r *Runtime) Run(ctx context.Context) error {
	credTicks, stopCred := tickSource(r.opts.CredentialTicks, r.opts.CredentialPoll)
	defer stopCred()
	reconcileTicks, stopReconcile := tickSource(r.opts.ReconcileTicks, r.opts.ReconcilePoll)
	defer stopReconcile()
	defer r.channel.Disconnect()

	if !r.opts.SkipInitialBootstrap {
		_ = r.sync.Bootstrap(ctx)
	}

	var retry <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-credTicks:
			r.checkCredential(ctx)
		case <-reconcileTicks:
			_, _ = r.sync.PollReconcile(ctx)
		case <-r.connected:
			r.logger.Info("channel connected")
			r.bootstrapIfEmpty(ctx)
		case s := <-r.states:
			if s == realtime.StateError {
				retry = r.opts.After(r.opts.ErrorRetry)
			} else {
				retry = nil
			}
		case <-retry:
			retry = nil
			r.retryFromError(ctx)
		case <-r.reconnect:
			r.connectStored(ctx, "manual reconnect triggered")
		}
	}
}

// checkCredential reconnects when the stored credential appears or changes.
func (r *Runtime) checkCredential(ctx context.Context) {
	token, err := r.tokens.Get(storage.KeyAuthToken)
	if err != nil {
		r.logger.Debug("credential poll failed", "error", err)
		return
	}
	if token == "" || token == r.lastToken {
		return
	}
	r.lastToken = token
	r.logger.Info("detected token change, initializing channel")
	r.connect(ctx, token)
	r.bootstrapIfEmpty(ctx)
}

// retryFromError reconnects after the error delay, only with a credential.
func (r *Runtime) retryFromError(ctx context.Context) {
	if r.channel.State() != realtime.StateError {
		return
	}
	r.connectStored(ctx, "retrying after channel error")
}

func (r *Runtime) connectStored(ctx context.Context, reason string) {
	token, err := r.tokens.Get(storage.KeyAuthToken)
	if err != nil || token == "" {
		r.logger.Debug("no credential, not reconnecting", "reason", reason)
		return
	}
	r.logger.Info(reason)
	r.connect(ctx, token)
}

func (r *Runtime) connect(ctx context.Context, token string) {
	if err := r.channel.Connect(ctx, token); err != nil {
		r.logger.Warn("channel connect failed", "error", err)
	}
}

func (r *Runtime) bootstrapIfEmpty(ctx context.Context) {
	if r.sync.Empty() {
		_ = r.sync.Bootstrap(ctx)
	}
}
