package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/advising-app/advising-notify/internal/tmux"
)

// DefaultDisplayDuration is how long a tmux alert stays on screen.
const DefaultDisplayDuration = 5 * time.Second

// TmuxPlatform shows alerts in the tmux status line.
type TmuxPlatform struct {
	client   tmux.Client
	duration time.Duration
}

var _ Platform = (*TmuxPlatform)(nil)

// NewTmuxPlatform creates a TmuxPlatform. duration <= 0 uses the default.
func NewTmuxPlatform(client tmux.Client, duration time.Duration) *TmuxPlatform {
	if client == nil {
		panic("NewTmuxPlatform: client dependency cannot be nil")
	}
	if duration <= 0 {
		duration = DefaultDisplayDuration
	}
	return &TmuxPlatform{client: client, duration: duration}
}

// RequestPermission is granted when a tmux server is reachable.
func (t *TmuxPlatform) RequestPermission(ctx context.Context) (bool, error) {
	ok, err := t.client.HasSession(ctx)
	if err != nil {
		return false, nil
	}
	return ok, nil
}

// CreateChannel has no tmux equivalent.
func (t *TmuxPlatform) CreateChannel(ctx context.Context, ch Channel) error {
	return nil
}

// Display shows "title: body" on every attached client.
func (t *TmuxPlatform) Display(ctx context.Context, a Alert) error {
	msg := a.Title
	if a.Body != "" {
		msg = fmt.Sprintf("%s: %s", a.Title, a.Body)
	}
	return t.client.DisplayMessage(ctx, msg, t.duration)
}
