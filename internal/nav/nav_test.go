package nav

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSurface struct {
	ready   bool
	err     error
	targets []Target
}

func (s *recordingSurface) Ready() bool { return s.ready }

func (s *recordingSurface) Navigate(ctx context.Context, t Target) error {
	s.targets = append(s.targets, t)
	return s.err
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]string
		want    Target
	}{
		{"appointment", map[string]string{"relatedAppointmentId": "42", "notificationId": "7"}, Target{Screen: ScreenAppointmentDetail, AppointmentID: "42"}},
		{"empty id", map[string]string{"relatedAppointmentId": "", "notificationId": "7"}, Target{Screen: ScreenNotifications}},
		{"missing key", map[string]string{"notificationId": "7"}, Target{Screen: ScreenNotifications}},
		{"nil payload", nil, Target{Screen: ScreenNotifications}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.payload))
		})
	}
}

func TestNavigateWhenReady(t *testing.T) {
	s := &recordingSurface{ready: true}
	r := NewResolver(s, nil)

	got := r.Open(context.Background(), map[string]string{"relatedAppointmentId": "3"})
	assert.Equal(t, ScreenAppointmentDetail, got.Screen)
	require.Len(t, s.targets, 1)
	assert.Zero(t, r.Pending())
}

func TestNavigateQueuesUntilReady(t *testing.T) {
	s := &recordingSurface{}
	r := NewResolver(s, nil)
	ctx := context.Background()

	r.Navigate(ctx, Target{Screen: ScreenNotifications})
	r.Navigate(ctx, Target{Screen: ScreenAppointmentDetail, AppointmentID: "9"})
	assert.Equal(t, 2, r.Pending())
	assert.Empty(t, s.targets)

	assert.Zero(t, r.Flush(ctx))
	assert.Equal(t, 2, r.Pending())

	s.ready = true
	assert.Equal(t, 2, r.Flush(ctx))
	assert.Equal(t, []Target{
		{Screen: ScreenNotifications},
		{Screen: ScreenAppointmentDetail, AppointmentID: "9"},
	}, s.targets)
	assert.Zero(t, r.Pending())
}

func TestNavigateErrorsAreSwallowed(t *testing.T) {
	s := &recordingSurface{ready: true, err: errors.New("no route")}
	r := NewResolver(s, nil)
	assert.NotPanics(t, func() { r.Navigate(context.Background(), Target{Screen: ScreenNotifications}) })
	assert.Len(t, s.targets, 1)
}

func TestNewResolverPanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewResolver(nil, nil) })
}

func TestDeepLink(t *testing.T) {
	assert.Equal(t, "advising://notifications", DeepLink(Target{Screen: ScreenNotifications}))
	assert.Equal(t, "advising://appointments/42", DeepLink(Target{Screen: ScreenAppointmentDetail, AppointmentID: "42"}))
}

func TestCLISurface(t *testing.T) {
	var out bytes.Buffer
	s := NewCLISurface(&out, "")
	require.True(t, s.Ready())
	require.NoError(t, s.Navigate(context.Background(), Target{Screen: ScreenAppointmentDetail, AppointmentID: "5"}))
	assert.Equal(t, "advising://appointments/5\n", out.String())
}

func TestCLISurfaceRunsOpener(t *testing.T) {
	var out bytes.Buffer
	s := NewCLISurface(&out, "xdg-open --quiet")
	var gotName string
	var gotArgs []string
	s.run = func(ctx context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}
	require.NoError(t, s.Navigate(context.Background(), Target{Screen: ScreenNotifications}))
	assert.Equal(t, "xdg-open", gotName)
	assert.Equal(t, []string{"--quiet", "advising://notifications"}, gotArgs)

	s.run = func(ctx context.Context, name string, args ...string) error { return errors.New("exit 1") }
	assert.ErrorContains(t, s.Navigate(context.Background(), Target{Screen: ScreenNotifications}), "open advising://notifications")
}

func TestCLISurfaceReadiness(t *testing.T) {
	var out bytes.Buffer
	s := NewCLISurface(&out, "")
	r := NewResolver(s, nil)
	s.SetReady(false)
	r.Navigate(context.Background(), Target{Screen: ScreenNotifications})
	assert.Empty(t, out.String())
	s.SetReady(true)
	r.Flush(context.Background())
	assert.Equal(t, "advising://notifications\n", out.String())
}
