// Package push handles the push provider side: device token
// registration, foreground messages and alert taps.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/advising-app/advising-notify/internal/alert"
	"github.com/advising-app/advising-notify/internal/logging"
	"github.com/advising-app/advising-notify/internal/nav"
	"github.com/advising-app/advising-notify/internal/storage"
)

// DefaultTitle is used when a remote message carries no title.
const DefaultTitle = "Notification"

// TokenStore persists the device token.
type TokenStore interface {
	Set(key, value string) error
}

// DeviceTokenPoster sends the device token to the backend.
type DeviceTokenPoster interface {
	RegisterDeviceToken(ctx context.Context, token string) error
}

// AlertShower displays a prepared alert.
type AlertShower interface {
	Show(ctx context.Context, a alert.Alert) error
}

// Navigator opens the target for an alert payload.
type Navigator interface {
	Open(ctx context.Context, payload map[string]string) nav.Target
}

// RemoteNotification is the display part of a remote message.
type RemoteNotification struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

// RemoteMessage is a message delivered by the push provider.
type RemoteMessage struct {
	Notification *RemoteNotification `json:"notification,omitempty"`
	Data         map[string]any      `json:"data,omitempty"`
}

// Registrar wires push events to storage, the backend, alerts and
// navigation. Any dependency may be nil, which disables that part.
type Registrar struct {
	Store     TokenStore
	Backend   DeviceTokenPoster
	Alerts    AlertShower
	Navigator Navigator
	Logger    logging.Logger
}

func (r *Registrar) logger() logging.Logger {
	if r.Logger == nil {
		return logging.Nop()
	}
	return r.Logger
}

// Register stores token under the device token key and posts it to the
// backend. An empty token is ignored.
func (r *Registrar) Register(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if r.Store != nil {
		if err := r.Store.Set(storage.KeyDeviceToken, token); err != nil {
			r.logger().Warn("store device token failed", "error", err)
			return fmt.Errorf("store device token: %w", err)
		}
	}
	if r.Backend == nil {
		return nil
	}
	if err := r.Backend.RegisterDeviceToken(ctx, token); err != nil {
		r.logger().Warn("device token registration failed", "error", err)
		return err
	}
	r.logger().Info("device token registered")
	return nil
}

// OnTokenRefresh re-registers a refreshed token. Errors are logged only.
func (r *Registrar) OnTokenRefresh(ctx context.Context, token string) {
	r.logger().Info("device token refreshed")
	_ = r.Register(ctx, token)
}

// ForegroundMessage presents a remote message as a local alert.
func (r *Registrar) ForegroundMessage(ctx context.Context, msg RemoteMessage) error {
	a := AlertFromMessage(msg)
	if r.Alerts == nil {
		r.logger().Info("skip foreground message, no alert presenter", "title", a.Title)
		return nil
	}
	return r.Alerts.Show(ctx, a)
}

// OnAlertPressed navigates to the target for payload.
func (r *Registrar) OnAlertPressed(ctx context.Context, payload map[string]string) {
	if r.Navigator == nil {
		return
	}
	t := r.Navigator.Open(ctx, payload)
	r.logger().Debug("alert pressed", "screen", t.Screen)
}

// AlertFromMessage builds the alert for a remote message. Title falls
// back to data.title then DefaultTitle; body to data.body then
// data.message. Non-string data values are JSON encoded.
func AlertFromMessage(msg RemoteMessage) alert.Alert {
	var title, body string
	if msg.Notification != nil {
		title, body = msg.Notification.Title, msg.Notification.Body
	}
	if title == "" {
		title = firstData(msg.Data, "title")
	}
	if title == "" {
		title = DefaultTitle
	}
	if body == "" {
		body = firstData(msg.Data, "body", "message")
	}

	data := make(map[string]string, len(msg.Data))
	keys := make([]string, 0, len(msg.Data))
	for k := range msg.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		data[k] = stringify(msg.Data[k])
	}
	return alert.Alert{Title: title, Body: body, ChannelID: alert.DefaultChannel.ID, Data: data}
}

// firstData returns the first non-empty value among keys.
func firstData(data map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := data[k]
		if !ok || v == nil {
			continue
		}
		if s := stringify(v); s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
