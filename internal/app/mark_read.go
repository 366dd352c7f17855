package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/advising-app/advising-notify/internal/colors"
)

// MarkReadClient defines dependencies required to mark notifications read.
type MarkReadClient interface {
	MarkRead(ctx context.Context, id int64) error
	MarkReadBatch(ctx context.Context, ids []int64) error
	MarkAllRead(ctx context.Context) error
}

// UnreadReporter is implemented by clients that keep a local unread
// counter. loaded is false when the counter was never fetched.
type UnreadReporter interface {
	Unread() (count int64, loaded bool)
}

func reportUnread(client any) {
	r, ok := client.(UnreadReporter)
	if !ok {
		return
	}
	if count, loaded := r.Unread(); loaded {
		colors.Info(fmt.Sprintf("%d unread", count))
	}
}

// MarkReadUseCase coordinates mark-read behavior.
type MarkReadUseCase struct {
	client MarkReadClient
}

// NewMarkReadUseCase creates a new mark-read use-case.
func NewMarkReadUseCase(client MarkReadClient) *MarkReadUseCase {
	if client == nil {
		panic("NewMarkReadUseCase: client dependency cannot be nil")
	}
	return &MarkReadUseCase{client: client}
}

// Execute marks the given ids read. One id uses the single endpoint,
// several use the batch endpoint.
func (u *MarkReadUseCase) Execute(ctx context.Context, args []string) error {
	ids, err := ParseIDs(args)
	if err != nil {
		return fmt.Errorf("mark-read: %w", err)
	}
	if len(ids) == 1 {
		err = u.client.MarkRead(ctx, ids[0])
	} else {
		err = u.client.MarkReadBatch(ctx, ids)
	}
	if err != nil {
		return fmt.Errorf("mark-read: %w", err)
	}
	colors.Success(fmt.Sprintf("Notification %s marked as read", joinIDs(ids)))
	reportUnread(u.client)
	return nil
}

// ExecuteAll marks every notification read.
func (u *MarkReadUseCase) ExecuteAll(ctx context.Context) error {
	if err := u.client.MarkAllRead(ctx); err != nil {
		return fmt.Errorf("mark-all-read: %w", err)
	}
	colors.Success("All notifications marked as read")
	reportUnread(u.client)
	return nil
}

// ParseIDs converts positive decimal ids. At least one is required.
func ParseIDs(args []string) ([]int64, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("notification id required")
	}
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid notification id: %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
