// Package nav routes alert taps and deep links to a screen.
package nav

import (
	"context"
	"sync"

	"github.com/advising-app/advising-notify/internal/logging"
)

// Screens.
const (
	ScreenNotifications     = "Notifications"
	ScreenAppointmentDetail = "AppointmentDetail"
)

// PayloadRelatedAppointmentID is the payload key naming the appointment.
const PayloadRelatedAppointmentID = "relatedAppointmentId"

// Target is a resolved navigation destination.
type Target struct {
	Screen        string
	AppointmentID string
}

// Resolve maps an alert payload to a target. A non-empty
// relatedAppointmentId opens the appointment, anything else the list.
func Resolve(payload map[string]string) Target {
	if id := payload[PayloadRelatedAppointmentID]; id != "" {
		return Target{Screen: ScreenAppointmentDetail, AppointmentID: id}
	}
	return Target{Screen: ScreenNotifications}
}

// Surface is where navigation lands.
type Surface interface {
	Ready() bool
	Navigate(ctx context.Context, t Target) error
}

// Resolver navigates immediately when the surface is ready and queues
// otherwise. Errors are logged, never returned.
type Resolver struct {
	surface Surface
	logger  logging.Logger

	mu      sync.Mutex
	pending []Target
}

// NewResolver creates a Resolver.
func NewResolver(surface Surface, logger logging.Logger) *Resolver {
	if surface == nil {
		panic("nav.NewResolver: surface dependency cannot be nil")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Resolver{surface: surface, logger: logger.With("component", "nav")}
}

// Open resolves payload and navigates to it.
func (r *Resolver) Open(ctx context.Context, payload map[string]string) Target {
	t := Resolve(payload)
	r.Navigate(ctx, t)
	return t
}

// Navigate routes to t, or queues it until Flush.
func (r *Resolver) Navigate(ctx context.Context, t Target) {
	if !r.surface.Ready() {
		r.mu.Lock()
		r.pending = append(r.pending, t)
		r.mu.Unlock()
		r.logger.Debug("surface not ready, navigation queued", "screen", t.Screen)
		return
	}
	if err := r.surface.Navigate(ctx, t); err != nil {
		r.logger.Warn("navigate error", "screen", t.Screen, "error", err)
	}
}

// Flush drains the queue in FIFO order once the surface is ready. It
// returns the number of targets dispatched.
func (r *Resolver) Flush(ctx context.Context) int {
	if !r.surface.Ready() {
		return 0
	}
	r.mu.Lock()
	queued := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, t := range queued {
		if err := r.surface.Navigate(ctx, t); err != nil {
			r.logger.Warn("pending navigate error", "screen", t.Screen, "error", err)
		}
	}
	return len(queued)
}

// Pending returns the number of queued targets.
func (r *Resolver) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
