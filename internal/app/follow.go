package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/advising-app/advising-notify/internal/colors"
	"github.com/advising-app/advising-notify/internal/feedsync"
	"github.com/advising-app/advising-notify/internal/format"
	"github.com/advising-app/advising-notify/internal/formatter"
	"github.com/advising-app/advising-notify/internal/realtime"
)

// ConnectionHookPoint is the hook point run on every channel state change.
const ConnectionHookPoint = "connection"

// FollowRunner is the loop follow waits on.
type FollowRunner interface {
	Run(ctx context.Context) error
}

// HookRunner runs the scripts of a hook point.
type HookRunner interface {
	Run(ctx context.Context, point string, vars map[string]string) error
}

// StatusSink receives the rendered status line.
type StatusSink interface {
	SetStatusOption(ctx context.Context, name, value string) error
}

// FollowOptions holds all parameters for follow behavior.
type FollowOptions struct {
	Output io.Writer
	Now    func() time.Time
	// Status is optional; when set every change re-renders StatusFormat
	// into StatusOption.
	Status       StatusSink
	StatusOption string
	StatusFormat string
	// Connection reports the channel state for the status line.
	Connection func() string
	// Signals stops follow when closed or sent to. Defaults to SIGINT/SIGTERM.
	Signals <-chan os.Signal
	// Reconnect is called for every value on Reloads. Reloads defaults
	// to SIGHUP when Reconnect is set.
	Reconnect func()
	Reloads   <-chan os.Signal
	// Hooks runs ConnectionHookPoint on state changes. It should be
	// async, since ObserveState runs on the channel goroutine.
	Hooks HookRunner
}

// FollowUseCase prints feed changes while the runtime runs.
type FollowUseCase struct {
	opts FollowOptions

	mu         sync.Mutex
	seen       map[int64]bool
	last       feedsync.Snapshot
	lastStatus string
	hasStatus  bool
}

// NewFollowUseCase creates a follow use-case.
func NewFollowUseCase(opts FollowOptions) *FollowUseCase {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.StatusFormat == "" {
		opts.StatusFormat = "count-only"
	}
	if opts.Connection == nil {
		opts.Connection = func() string { return "" }
	}
	return &FollowUseCase{opts: opts, seen: make(map[int64]bool)}
}

// Observe is the synchronizer change hook. Records not printed before
// are written oldest first; the status line is refreshed when it changes.
func (u *FollowUseCase) Observe(snap feedsync.Snapshot) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for i := len(snap.Records) - 1; i >= 0; i-- {
		n := snap.Records[i]
		if u.seen[n.ID] {
			continue
		}
		u.seen[n.ID] = true
		_ = format.FeedEvent(u.opts.Output, n, u.opts.Now())
	}
	u.last = snap
	u.publishStatusLocked(snap)
}

// ObserveState is the channel state hook. It runs the connection hooks
// and re-renders the status line, which may show the state.
func (u *FollowUseCase) ObserveState(state realtime.State) {
	if u.opts.Hooks != nil {
		vars := map[string]string{"state": state.String()}
		if err := u.opts.Hooks.Run(context.Background(), ConnectionHookPoint, vars); err != nil {
			colors.Debug(fmt.Sprintf("follow: connection hook: %v", err))
		}
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.publishStatusLocked(u.last)
}

func (u *FollowUseCase) publishStatusLocked(snap feedsync.Snapshot) {
	if u.opts.Status == nil {
		return
	}
	vars := formatter.NewVariableContext(snap.Records, snap.Unread, u.opts.Connection())
	line, err := formatter.Render(u.opts.StatusFormat, vars)
	if err != nil {
		colors.Debug(fmt.Sprintf("follow: status format: %v", err))
		return
	}
	if u.hasStatus && line == u.lastStatus {
		return
	}
	if err := u.opts.Status.SetStatusOption(context.Background(), u.opts.StatusOption, line); err != nil {
		colors.Debug(fmt.Sprintf("follow: status update failed: %v", err))
		return
	}
	u.lastStatus, u.hasStatus = line, true
}

// Execute runs the runner until interruption or cancellation.
func (u *FollowUseCase) Execute(ctx context.Context, runner FollowRunner) error {
	if runner == nil {
		return fmt.Errorf("follow: runner cannot be nil")
	}

	sigChan := u.opts.Signals
	if sigChan == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(ch)
		sigChan = ch
	}

	reloads := u.opts.Reloads
	if reloads == nil && u.opts.Reconnect != nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGHUP)
		defer signal.Stop(ch)
		reloads = ch
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	colors.Info("Following notifications (Ctrl+C to stop, SIGHUP to reconnect)...")

	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

wait:
	for {
		select {
		case err := <-done:
			u.clearStatus()
			return err
		case <-reloads:
			_, _ = fmt.Fprintln(u.opts.Output, "Reconnecting...")
			if u.opts.Reconnect != nil {
				u.opts.Reconnect()
			}
		case sig := <-sigChan:
			_, _ = fmt.Fprintf(u.opts.Output, "\nReceived signal %v, stopping...\n", sig)
			break wait
		case <-ctx.Done():
			break wait
		}
	}
	cancel()
	err := <-done
	u.clearStatus()
	return err
}

func (u *FollowUseCase) clearStatus() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.opts.Status == nil || !u.hasStatus {
		return
	}
	if err := u.opts.Status.SetStatusOption(context.Background(), u.opts.StatusOption, ""); err != nil {
		colors.Debug(fmt.Sprintf("follow: status reset failed: %v", err))
	}
	u.hasStatus = false
}
