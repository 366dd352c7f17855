package app

import (
	"context"
	"fmt"
	"io"

	"github.com/advising-app/advising-notify/internal/api"
	"github.com/advising-app/advising-notify/internal/format"
	"github.com/advising-app/advising-notify/internal/formatter"
	"golang.org/x/sync/errgroup"
)

// StatusFormatSummary prints the plain unread summary.
const StatusFormatSummary = "summary"

// StatusClient defines dependencies for the status command.
type StatusClient interface {
	UnreadCount(ctx context.Context) (int64, error)
	List(ctx context.Context, opts api.ListOptions) (api.Page, error)
}

// StatusUseCase coordinates status behavior.
type StatusUseCase struct {
	client StatusClient
}

// NewStatusUseCase creates a status use-case.
func NewStatusUseCase(client StatusClient) *StatusUseCase {
	if client == nil {
		panic("NewStatusUseCase: client dependency cannot be nil")
	}
	return &StatusUseCase{client: client}
}

// ValidateStatusFormat accepts summary, a preset name or a template.
func ValidateStatusFormat(formatValue string) error {
	if formatValue == StatusFormatSummary {
		return nil
	}
	if _, err := formatter.NewPresetRegistry().Get(formatValue); err == nil {
		return nil
	}
	if err := formatter.ValidateTemplate(formatValue); err != nil {
		return fmt.Errorf("status: invalid format %q: %w", formatValue, err)
	}
	return nil
}

// Execute fetches the unread counter and first page and renders them.
func (u *StatusUseCase) Execute(ctx context.Context, formatValue, connectionState string, w io.Writer) error {
	var unread int64
	var page api.Page
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		unread, err = u.client.UnreadCount(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		page, err = u.client.List(gctx, api.ListOptions{Page: 0, Size: api.DefaultPageSize})
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("status: %w", err)
	}

	if formatValue == StatusFormatSummary {
		return format.FormatSummary(w, unread, connectionState)
	}
	line, err := formatter.Render(formatValue, formatter.NewVariableContext(page.Content, unread, connectionState))
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	_, err = fmt.Fprintln(w, line)
	return err
}
