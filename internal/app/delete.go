package app

import (
	"context"
	"fmt"

	"github.com/advising-app/advising-notify/internal/colors"
)

// DeleteClient defines dependencies required to delete notifications.
type DeleteClient interface {
	Delete(ctx context.Context, id int64) error
	DeleteBatch(ctx context.Context, ids []int64) error
}

// DeleteUseCase coordinates delete behavior.
type DeleteUseCase struct {
	client DeleteClient
}

// NewDeleteUseCase creates a delete use-case.
func NewDeleteUseCase(client DeleteClient) *DeleteUseCase {
	if client == nil {
		panic("NewDeleteUseCase: client dependency cannot be nil")
	}
	return &DeleteUseCase{client: client}
}

// Execute deletes the given ids.
func (u *DeleteUseCase) Execute(ctx context.Context, args []string) error {
	ids, err := ParseIDs(args)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if len(ids) == 1 {
		err = u.client.Delete(ctx, ids[0])
	} else {
		err = u.client.DeleteBatch(ctx, ids)
	}
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if len(ids) == 1 {
		colors.Success(fmt.Sprintf("Notification %d deleted", ids[0]))
	} else {
		colors.Success(fmt.Sprintf("%d notifications deleted", len(ids)))
	}
	reportUnread(u.client)
	return nil
}
