package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/advising-app/advising-notify/internal/logging"
	"github.com/advising-app/advising-notify/internal/nav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerOpenFlushesQueuedTargets(t *testing.T) {
	var out bytes.Buffer
	c := &container{logger: logging.Nop()}
	c.surface = nav.NewCLISurface(&out, "")
	c.surface.SetReady(false)
	c.nav = nav.NewResolver(c.surface, c.logger)
	c.once.Do(func() {})

	ctx := context.Background()
	earlier := map[string]string{"relatedAppointmentId": "7"}
	c.nav.Open(ctx, earlier)
	require.Equal(t, 1, c.nav.Pending())
	assert.Empty(t, out.String())

	payload := map[string]string{"relatedAppointmentId": "12"}
	got, err := c.Open(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, nav.Resolve(payload), got)
	assert.True(t, c.surface.Ready())
	assert.Zero(t, c.nav.Pending())

	want := nav.DeepLink(nav.Resolve(earlier)) + "\n" + nav.DeepLink(got) + "\n"
	assert.Equal(t, want, out.String())
}

func TestContainerUnreadNeedsLoadedFeed(t *testing.T) {
	c := &container{}
	_, loaded := c.Unread()
	assert.False(t, loaded)
}
