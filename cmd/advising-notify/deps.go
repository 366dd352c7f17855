package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/advising-app/advising-notify/internal/alert"
	"github.com/advising-app/advising-notify/internal/api"
	"github.com/advising-app/advising-notify/internal/app"
	"github.com/advising-app/advising-notify/internal/colors"
	"github.com/advising-app/advising-notify/internal/config"
	"github.com/advising-app/advising-notify/internal/domain"
	"github.com/advising-app/advising-notify/internal/feedsync"
	"github.com/advising-app/advising-notify/internal/hooks"
	"github.com/advising-app/advising-notify/internal/ledger"
	"github.com/advising-app/advising-notify/internal/logging"
	"github.com/advising-app/advising-notify/internal/nav"
	"github.com/advising-app/advising-notify/internal/push"
	"github.com/advising-app/advising-notify/internal/realtime"
	"github.com/advising-app/advising-notify/internal/storage"
	"github.com/advising-app/advising-notify/internal/tmux"
	"github.com/advising-app/advising-notify/internal/version"
)

// container builds the shared dependencies on first use, so config is
// loaded once and only commands that need the network touch it.
type container struct {
	once sync.Once
	err  error

	logger  logging.Logger
	store   storage.Store
	api     *api.Client
	ledger  *ledger.Ledger
	surface *nav.CLISurface
	nav     *nav.Resolver

	alertsOnce sync.Once
	alerts     *alert.Presenter

	feedOnce   sync.Once
	feed       *feedsync.Synchronizer
	loadOnce   sync.Once
	feedLoaded bool
}

var deps = &container{}

func (c *container) init() error {
	c.once.Do(func() {
		config.Load()
		if err := logging.InitGlobal(); err != nil {
			colors.Debug(fmt.Sprintf("logging disabled: %v", err))
		}
		c.logger = logging.GetGlobal()

		store, err := storage.NewFromConfig()
		if err != nil {
			c.err = fmt.Errorf("open token store: %w", err)
			return
		}
		c.store = store
		c.api = api.NewClient(
			config.Get("api_base_url", ""),
			store,
			api.WithTimeout(config.GetSeconds("http_timeout_seconds", 30*time.Second)),
			api.WithLogger(c.logger),
		)
		c.ledger = ledger.New(config.GetInt("ledger_max_entries", 0))
		// targets resolved before the surface is mounted are queued
		c.surface = nav.NewCLISurface(os.Stdout, config.Get("open_command", ""))
		c.surface.SetReady(false)
		c.nav = nav.NewResolver(c.surface, c.logger)
	})
	return c.err
}

// Close releases the token store.
func (c *container) Close() {
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			colors.Debug(fmt.Sprintf("close token store: %v", err))
		}
	}
	_ = logging.ShutdownGlobal()
}

func (c *container) presenter(ctx context.Context) *alert.Presenter {
	c.alertsOnce.Do(func() {
		c.alerts = alert.FromConfig(c.logger)
		c.alerts.Init(ctx)
	})
	return c.alerts
}

// lazyPresenter initializes the alert platform on the first alert, so
// commands that never alert do not touch it.
type lazyPresenter struct {
	c *container
}

func (p lazyPresenter) Present(ctx context.Context, n domain.Notification) error {
	return p.c.presenter(ctx).Present(ctx, n)
}

// synchronizer returns the feed shared by the one-shot commands.
func (c *container) synchronizer(ctx context.Context) *feedsync.Synchronizer {
	c.feedOnce.Do(func() {
		c.feed = feedsync.New(feedsync.Options{
			Repository: c.api,
			Presenter:  lazyPresenter{c: c},
			Ledger:     c.ledger,
			Logger:     c.logger,
		})
	})
	return c.feed
}

// loadedFeed bootstraps the shared feed once, so local updates apply to
// the real first page and unread counter. A failed bootstrap is logged
// and the remote call still goes ahead.
func (c *container) loadedFeed(ctx context.Context) *feedsync.Synchronizer {
	feed := c.synchronizer(ctx)
	c.loadOnce.Do(func() {
		if err := feed.Bootstrap(ctx); err != nil {
			c.logger.Warn("feed not loaded, local counter unavailable", "error", err)
			return
		}
		c.feedLoaded = true
	})
	return feed
}

// Unread returns the local unread counter after a mutation.
func (c *container) Unread() (int64, bool) {
	if c.feed == nil || !c.feedLoaded {
		return 0, false
	}
	return c.feed.Unread(), true
}

// Feed returns the shared feed for paging.
func (c *container) Feed(ctx context.Context) (app.FeedPager, error) {
	if err := c.init(); err != nil {
		return nil, err
	}
	return c.synchronizer(ctx), nil
}

// mountSurface marks the CLI surface ready and dispatches queued targets
// in order.
func (c *container) mountSurface(ctx context.Context) {
	c.surface.SetReady(true)
	if n := c.nav.Flush(ctx); n > 0 {
		c.logger.Debug("flushed pending navigation", "count", n)
	}
}

func (c *container) registrar(ctx context.Context) *push.Registrar {
	return &push.Registrar{
		Store:     c.store,
		Backend:   c.api,
		Alerts:    c.presenter(ctx),
		Navigator: c.nav,
		Logger:    c.logger,
	}
}

// Version returns the build version.
func (c *container) Version() string {
	return version.String()
}

// SaveToken stores the bearer credential.
func (c *container) SaveToken(token string) error {
	if err := c.init(); err != nil {
		return err
	}
	return c.store.Set(storage.KeyAuthToken, token)
}

// ClearToken removes the bearer credential.
func (c *container) ClearToken() error {
	if err := c.init(); err != nil {
		return err
	}
	return c.store.Remove(storage.KeyAuthToken)
}

// DeviceToken returns the configured device token, falling back to the
// last stored one.
func (c *container) DeviceToken() (string, error) {
	if err := c.init(); err != nil {
		return "", err
	}
	if token := config.Get("device_token", ""); token != "" {
		return token, nil
	}
	return c.store.Get(storage.KeyDeviceToken)
}

// RegisterDevice stores and posts a device token.
func (c *container) RegisterDevice(ctx context.Context, token string) error {
	if err := c.init(); err != nil {
		return err
	}
	return c.registrar(ctx).Register(ctx, token)
}

// RefreshDevice re-registers a refreshed device token. Errors are logged.
func (c *container) RefreshDevice(ctx context.Context, token string) {
	if err := c.init(); err != nil {
		colors.Debug(fmt.Sprintf("refresh device token: %v", err))
		return
	}
	c.registrar(ctx).OnTokenRefresh(ctx, token)
}

// AlertStatus initializes the alert platform and reports its state.
func (c *container) AlertStatus(ctx context.Context) (bool, bool, error) {
	if err := c.init(); err != nil {
		return false, false, err
	}
	p := c.presenter(ctx)
	return p.Available(), p.Permitted(), nil
}

// UnreadCount asks the server for the unread counter.
func (c *container) UnreadCount(ctx context.Context) (int64, error) {
	if err := c.init(); err != nil {
		return 0, err
	}
	return c.api.UnreadCount(ctx)
}

// List fetches one page.
func (c *container) List(ctx context.Context, opts api.ListOptions) (api.Page, error) {
	if err := c.init(); err != nil {
		return api.Page{}, err
	}
	return c.api.List(ctx, opts)
}

// MarkRead marks one notification read.
func (c *container) MarkRead(ctx context.Context, id int64) error {
	if err := c.init(); err != nil {
		return err
	}
	return c.loadedFeed(ctx).MarkRead(ctx, id)
}

// MarkReadBatch marks several notifications read.
func (c *container) MarkReadBatch(ctx context.Context, ids []int64) error {
	if err := c.init(); err != nil {
		return err
	}
	return c.loadedFeed(ctx).MarkReadBatch(ctx, ids)
}

// MarkAllRead marks every notification read.
func (c *container) MarkAllRead(ctx context.Context) error {
	if err := c.init(); err != nil {
		return err
	}
	return c.loadedFeed(ctx).MarkAllRead(ctx)
}

// Delete removes one notification.
func (c *container) Delete(ctx context.Context, id int64) error {
	if err := c.init(); err != nil {
		return err
	}
	return c.loadedFeed(ctx).Delete(ctx, id)
}

// DeleteBatch removes several notifications.
func (c *container) DeleteBatch(ctx context.Context, ids []int64) error {
	if err := c.init(); err != nil {
		return err
	}
	return c.loadedFeed(ctx).DeleteBatch(ctx, ids)
}

// TestAlert raises a synthetic local alert.
func (c *container) TestAlert(ctx context.Context) error {
	if err := c.init(); err != nil {
		return err
	}
	return c.synchronizer(ctx).TestAlert(ctx)
}

// Open resolves an alert payload and navigates to it.
func (c *container) Open(ctx context.Context, payload map[string]string) (nav.Target, error) {
	if err := c.init(); err != nil {
		return nav.Target{}, err
	}
	t := c.nav.Open(ctx, payload)
	c.mountSurface(ctx)
	return t, nil
}

// ForegroundMessage presents a remote message as a local alert.
func (c *container) ForegroundMessage(ctx context.Context, msg push.RemoteMessage) error {
	if err := c.init(); err != nil {
		return err
	}
	return c.registrar(ctx).ForegroundMessage(ctx, msg)
}

// PressAlert handles a tap on a delivered alert.
func (c *container) PressAlert(ctx context.Context, payload map[string]string) error {
	if err := c.init(); err != nil {
		return err
	}
	c.registrar(ctx).OnAlertPressed(ctx, payload)
	c.mountSurface(ctx)
	return nil
}

// Follow runs the live feed until interrupted.
func (c *container) Follow(ctx context.Context, out io.Writer) error {
	if err := c.init(); err != nil {
		return err
	}

	var (
		feed    *feedsync.Synchronizer
		runtime *feedsync.Runtime
		follow  *app.FollowUseCase
	)
	channel := realtime.New(&realtime.StompDialer{
		URL:         config.Get("ws_url", ""),
		Destination: config.Get("ws_destination", "/user/queue/notifications"),
		Heartbeat:   config.GetSeconds("heartbeat_seconds", 10*time.Second),
		Logger:      c.logger,
	}, realtime.Options{
		RetryDelay:  config.GetSeconds("reconnect_delay_seconds", realtime.DefaultRetryDelay),
		OnFrame:     func() { feed.Touch() },
		OnMessage:   func(n domain.Notification) { feed.Ingest(ctx, n) },
		OnConnected: func() { runtime.NotifyConnected() },
		OnState: func(s realtime.State) {
			runtime.NotifyState(s)
			follow.ObserveState(s)
		},
		Logger: c.logger,
	})

	connHooks := hooks.FromConfig(c.logger)
	connHooks.Async = true
	opts := app.FollowOptions{
		Output:       out,
		StatusFormat: config.Get("status_format", "count-only"),
		Connection:   func() string { return channel.State().String() },
		Reconnect:    func() { runtime.Reconnect() },
		Hooks:        connHooks,
	}
	if config.GetBool("tmux_status", false) {
		opts.Status = tmux.NewDefaultClient()
		opts.StatusOption = tmux.UnreadOption
	}
	follow = app.NewFollowUseCase(opts)

	feed = feedsync.New(feedsync.Options{
		Repository: c.api,
		Presenter:  c.presenter(ctx),
		Ledger:     c.ledger,
		State:      channel,
		OnChange:   follow.Observe,
		Logger:     c.logger,
	})
	runtime = feedsync.NewRuntime(feed, channel, c.store, feedsync.RuntimeOptions{
		CredentialPoll: config.GetSeconds("credential_poll_seconds", feedsync.DefaultCredentialPoll),
		ErrorRetry:     config.GetSeconds("error_retry_seconds", feedsync.DefaultErrorRetry),
		ReconcilePoll:  config.GetSeconds("reconcile_poll_seconds", feedsync.DefaultReconcilePoll),
		Logger:         c.logger,
	})
	err := follow.Execute(ctx, runtime)
	connHooks.Wait()
	return err
}
