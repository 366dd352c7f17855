package alert

import (
	"github.com/advising-app/advising-notify/internal/config"
	"github.com/advising-app/advising-notify/internal/hooks"
	"github.com/advising-app/advising-notify/internal/logging"
	"github.com/advising-app/advising-notify/internal/tmux"
)

// Backend names accepted by alert_backend.
const (
	BackendTmux = "tmux"
	BackendHook = "hook"
	BackendNone = "none"
)

// NewPlatform returns the platform for backend, or nil for none and
// unknown names.
func NewPlatform(backend string, logger logging.Logger) Platform {
	switch backend {
	case BackendTmux:
		return NewTmuxPlatform(tmux.NewDefaultClient(), DefaultDisplayDuration)
	case BackendHook:
		return NewHookPlatform(hooks.FromConfig(logger))
	default:
		return nil
	}
}

// FromConfig builds a Presenter for the configured alert_backend.
func FromConfig(logger logging.Logger) *Presenter {
	return NewPresenter(NewPlatform(config.Get("alert_backend", BackendHook), logger), logger)
}
