package ports

import (
	"context"

	"github.com/99minutos/task-tracker/internal/core/domain"
)

// ActivityRecorder persists a single activity entry; run by dispatcher workers.
type ActivityRecorder interface {
	Record(ctx context.Context, activity domain.TaskActivity) error
}

// ActivityPublisher hands activity entries to the background pipeline.
// Publish must not block the request path.
type ActivityPublisher interface {
	Publish(activity domain.TaskActivity)
}
