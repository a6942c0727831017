package ports

import (
	"context"

	"github.com/99minutos/task-tracker/internal/core/domain"
)

// ActivityRepository persists the task audit trail.
type ActivityRepository interface {
	Insert(ctx context.Context, activity *domain.TaskActivity) error
	// ListByTask returns the entries for taskID in chronological order.
	ListByTask(ctx context.Context, taskID string) ([]*domain.TaskActivity, error)
}
