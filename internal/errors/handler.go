// Package errors reports command failures to the user.
package errors

import (
	stderrors "errors"
	"net/http"
	"sync"

	"github.com/advising-app/advising-notify/internal/api"
	"github.com/advising-app/advising-notify/internal/realtime"
)

// ErrorHandler is the interface for error handling.
type ErrorHandler interface {
	Error(msg string)
	Warning(msg string)
	Info(msg string)
	Success(msg string)
}

// ColorOutput is the console the CLI handler writes to.
type ColorOutput interface {
	Error(msgs ...string)
	Warning(msgs ...string)
	Info(msgs ...string)
	Success(msgs ...string)
}

// CLIHandler handles errors by printing to stdout/stderr using a ColorOutput.
type CLIHandler struct {
	colors     ColorOutput
	mu         sync.Mutex
	inHandling bool
}

var _ ErrorHandler = (*CLIHandler)(nil)

// NewCLIHandler creates a handler writing to colors.
func NewCLIHandler(colors ColorOutput) *CLIHandler {
	return &CLIHandler{colors: colors}
}

// Error prints msg. Re-entrant calls print without taking the guard.
func (h *CLIHandler) Error(msg string) {
	h.mu.Lock()
	if h.inHandling {
		h.mu.Unlock()
		h.colors.Error(msg)
		return
	}
	h.inHandling = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.inHandling = false
		h.mu.Unlock()
	}()

	h.colors.Error(msg)
}

func (h *CLIHandler) Warning(msg string) {
	h.colors.Warning(msg)
}

func (h *CLIHandler) Info(msg string) {
	h.colors.Info(msg)
}

func (h *CLIHandler) Success(msg string) {
	h.colors.Success(msg)
}

// Report prints err and, for failures the user can fix, a hint.
func Report(h ErrorHandler, err error) {
	if err == nil {
		return
	}
	h.Error(err.Error())
	if hint := Hint(err); hint != "" {
		h.Info(hint)
	}
}

// Hint returns a next step for well-known failures, or "".
func Hint(err error) string {
	var status *api.StatusError
	switch {
	case stderrors.Is(err, realtime.ErrNoToken):
		return "no token stored, run: advising-notify login <token>"
	case stderrors.As(err, &status) && (status.StatusCode == http.StatusUnauthorized || status.StatusCode == http.StatusForbidden):
		return "the server rejected the token, run: advising-notify login <token>"
	case stderrors.Is(err, api.ErrNotFound):
		return "the notification no longer exists, run: advising-notify list"
	default:
		return ""
	}
}
