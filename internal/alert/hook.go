package alert

import (
	"context"
	"strings"
	"unicode"

	"github.com/advising-app/advising-notify/internal/hooks"
)

// Hook points run by HookPlatform.
const (
	HookPointAlert   = "alert"
	HookPointChannel = "channel"
)

// HookPlatform hands alerts to user scripts.
type HookPlatform struct {
	runner *hooks.Runner
}

var _ Platform = (*HookPlatform)(nil)

// NewHookPlatform creates a HookPlatform.
func NewHookPlatform(runner *hooks.Runner) *HookPlatform {
	if runner == nil {
		panic("NewHookPlatform: runner dependency cannot be nil")
	}
	return &HookPlatform{runner: runner}
}

// RequestPermission ensures the hooks directory exists.
func (h *HookPlatform) RequestPermission(ctx context.Context) (bool, error) {
	if err := h.runner.Init(); err != nil {
		return false, err
	}
	return true, nil
}

// CreateChannel runs the channel hooks.
func (h *HookPlatform) CreateChannel(ctx context.Context, ch Channel) error {
	importance := "default"
	if ch.Importance == ImportanceHigh {
		importance = "high"
	}
	return h.runner.Run(ctx, HookPointChannel, map[string]string{
		"channel_id":         ch.ID,
		"channel_name":       ch.Name,
		"channel_importance": importance,
	})
}

// Display runs the alert hooks. Payload keys are exported in upper
// snake case, so notificationId becomes ADVISING_NOTIFY_NOTIFICATION_ID.
func (h *HookPlatform) Display(ctx context.Context, a Alert) error {
	vars := map[string]string{
		"title":      a.Title,
		"body":       a.Body,
		"channel_id": a.ChannelID,
	}
	for k, v := range a.Data {
		key := snakeCase(k)
		if _, taken := vars[key]; taken {
			key = "data_" + key
		}
		vars[key] = v
	}
	return h.runner.Run(ctx, HookPointAlert, vars)
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		if r == '-' || r == '.' || r == ' ' {
			r = '_'
		}
		b.WriteRune(r)
	}
	return b.String()
}
