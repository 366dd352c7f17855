// Package app holds the use-cases behind the CLI commands.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/advising-app/advising-notify/internal/api"
	"github.com/advising-app/advising-notify/internal/domain"
	"github.com/advising-app/advising-notify/internal/feedsync"
	"github.com/advising-app/advising-notify/internal/format"
	"github.com/advising-app/advising-notify/internal/search"
)

// ListClient defines dependencies for listing notifications.
type ListClient interface {
	List(ctx context.Context, opts api.ListOptions) (api.Page, error)
}

// FeedPager pages through the synchronized feed.
type FeedPager interface {
	Refresh(ctx context.Context) error
	LoadMore(ctx context.Context) (int, error)
	Snapshot() feedsync.Snapshot
}

// FeedSource is implemented by list clients that can page the whole feed.
type FeedSource interface {
	Feed(ctx context.Context) (FeedPager, error)
}

// ListOptions holds all parameters for list behavior.
type ListOptions struct {
	Page       int
	Size       int
	UnreadOnly bool
	Format     string
	// All loads every page through the feed instead of one page.
	All bool

	// Search filters the fetched page client side.
	Search     string
	SearchMode string
	IgnoreCase bool
}

// ListUseCase coordinates list behavior.
type ListUseCase struct {
	client ListClient
}

// NewListUseCase creates a list use-case.
func NewListUseCase(client ListClient) *ListUseCase {
	if client == nil {
		panic("NewListUseCase: client dependency cannot be nil")
	}
	return &ListUseCase{client: client}
}

// ValidateListOptions validates list command options.
func ValidateListOptions(opts ListOptions) error {
	if opts.Page < 0 {
		return fmt.Errorf("invalid page: %d (must be >= 0)", opts.Page)
	}
	if opts.Size <= 0 {
		return fmt.Errorf("invalid size: %d (must be > 0)", opts.Size)
	}
	if !format.IsValid(opts.Format) {
		names := make([]string, 0, len(format.Types))
		for _, t := range format.Types {
			names = append(names, string(t))
		}
		return fmt.Errorf("invalid format: %s (must be %s)", opts.Format, strings.Join(names, ", "))
	}
	if _, err := search.New(opts.SearchMode); err != nil {
		return err
	}
	return nil
}

// Execute fetches one page, or the whole feed with All, and writes it
// newest first.
func (u *ListUseCase) Execute(ctx context.Context, opts ListOptions, w io.Writer) error {
	if err := ValidateListOptions(opts); err != nil {
		return err
	}
	var records []domain.Notification
	if opts.All {
		all, err := u.loadAll(ctx, opts.UnreadOnly)
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}
		records = all
	} else {
		page, err := u.client.List(ctx, api.ListOptions{Page: opts.Page, Size: opts.Size, UnreadOnly: opts.UnreadOnly})
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}
		records = page.Content
	}
	provider, err := search.New(opts.SearchMode, search.WithCaseInsensitive(opts.IgnoreCase))
	if err != nil {
		return err
	}
	records = domain.SortByCreatedAtDesc(search.Filter(provider, records, opts.Search))
	return format.GetFormatter(opts.Format).FormatNotifications(records, w)
}

func (u *ListUseCase) loadAll(ctx context.Context, unreadOnly bool) ([]domain.Notification, error) {
	src, ok := u.client.(FeedSource)
	if !ok {
		return nil, fmt.Errorf("paging the whole feed is not supported")
	}
	pager, err := src.Feed(ctx)
	if err != nil {
		return nil, err
	}
	records, err := LoadAll(ctx, pager)
	if err != nil || !unreadOnly {
		return records, err
	}
	unread := records[:0]
	for _, n := range records {
		if !n.Read {
			unread = append(unread, n)
		}
	}
	return unread, nil
}

// LoadAll refreshes the feed and loads more pages until one comes back
// short.
func LoadAll(ctx context.Context, pager FeedPager) ([]domain.Notification, error) {
	if err := pager.Refresh(ctx); err != nil {
		return nil, err
	}
	for !pager.Snapshot().Exhausted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := pager.LoadMore(ctx); err != nil {
			return nil, err
		}
	}
	return pager.Snapshot().Records, nil
}
