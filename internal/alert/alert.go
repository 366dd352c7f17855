// Package alert presents device alerts for notifications.
//
// A Presenter talks to one Platform (tmux, hook scripts, or nothing). It
// never deduplicates; callers consult the delivery ledger first.
package alert

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/advising-app/advising-notify/internal/domain"
	"github.com/advising-app/advising-notify/internal/logging"
)

// Payload keys carried by every notification alert.
const (
	DataNotificationID       = "notificationId"
	DataRelatedAppointmentID = "relatedAppointmentId"
)

// DefaultTitle is used when a notification has no title.
const DefaultTitle = "New Notification"

// ErrUnavailable is returned by Present when no platform is configured.
var ErrUnavailable = errors.New("alert platform unavailable")

// Importance mirrors the platform notion of channel priority.
type Importance int

const (
	ImportanceDefault Importance = iota
	ImportanceHigh
)

// Channel is an alert category registered with the platform.
type Channel struct {
	ID         string
	Name       string
	Importance Importance
}

// DefaultChannel is the single channel every alert is posted to.
var DefaultChannel = Channel{ID: "default", Name: "Default", Importance: ImportanceHigh}

// Alert is one displayable alert.
type Alert struct {
	Title     string
	Body      string
	ChannelID string
	Data      map[string]string
}

// Platform is the underlying local alert capability.
type Platform interface {
	RequestPermission(ctx context.Context) (bool, error)
	CreateChannel(ctx context.Context, ch Channel) error
	Display(ctx context.Context, a Alert) error
}

// FromNotification builds the alert for a notification record.
func FromNotification(n domain.Notification) Alert {
	title := n.Title
	if title == "" {
		title = DefaultTitle
	}
	related := ""
	if n.RelatedAppointmentID != nil && *n.RelatedAppointmentID != 0 {
		related = n.AppointmentIDString()
	}
	return Alert{
		Title:     title,
		Body:      n.Message,
		ChannelID: DefaultChannel.ID,
		Data: map[string]string{
			DataNotificationID:       strconv.FormatInt(n.ID, 10),
			DataRelatedAppointmentID: related,
		},
	}
}

// Presenter displays alerts through a Platform.
type Presenter struct {
	platform Platform
	logger   logging.Logger

	initOnce  sync.Once
	mu        sync.Mutex
	permitted bool
}

// NewPresenter creates a Presenter. A nil platform makes every call a
// logged no-op.
func NewPresenter(platform Platform, logger logging.Logger) *Presenter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Presenter{platform: platform, logger: logger.With("component", "alert")}
}

// Available reports whether a platform is configured.
func (p *Presenter) Available() bool {
	return p.platform != nil
}

// Permitted reports the permission result recorded by Init.
func (p *Presenter) Permitted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permitted
}

// Init requests permission and registers the default channel. Only the
// first call does any work. Failures are logged.
func (p *Presenter) Init(ctx context.Context) {
	p.initOnce.Do(func() {
		if p.platform == nil {
			p.logger.Info("alert platform unavailable, local alerts disabled")
			return
		}
		granted, err := p.platform.RequestPermission(ctx)
		if err != nil {
			p.logger.Warn("permission/channel init error", "error", err)
			return
		}
		p.mu.Lock()
		p.permitted = granted
		p.mu.Unlock()
		p.logger.Info("permission result", "granted", granted)
		if err := p.platform.CreateChannel(ctx, DefaultChannel); err != nil {
			p.logger.Warn("permission/channel init error", "error", err)
		}
	})
}

// Present displays the alert for n.
func (p *Presenter) Present(ctx context.Context, n domain.Notification) error {
	return p.Show(ctx, FromNotification(n))
}

// Show displays a prepared alert. Errors are logged and returned.
func (p *Presenter) Show(ctx context.Context, a Alert) error {
	if p.platform == nil {
		p.logger.Info("skip local alert, platform unavailable", "title", a.Title)
		return ErrUnavailable
	}
	if a.ChannelID == "" {
		a.ChannelID = DefaultChannel.ID
	}
	if err := p.platform.Display(ctx, a); err != nil {
		p.logger.Warn("display alert error", "title", a.Title, "error", err)
		return err
	}
	p.logger.Debug("alert displayed", "title", a.Title, DataNotificationID, a.Data[DataNotificationID])
	return nil
}
