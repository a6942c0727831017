package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/task-tracker/internal/core/domain"
	"github.com/99minutos/task-tracker/internal/core/ports"
)

type activityService struct {
	repo ports.ActivityRepository
	log  zerolog.Logger
}

// NewActivityService returns the recorder run by the activity dispatcher workers.
func NewActivityService(repo ports.ActivityRepository, log zerolog.Logger) ports.ActivityRecorder {
	return &activityService{repo: repo, log: log}
}

// Record persists one activity entry.
func (s *activityService) Record(ctx context.Context, activity domain.TaskActivity) error {
	if activity.TaskID == "" {
		return fmt.Errorf("record activity: missing task id")
	}

	if err := s.repo.Insert(ctx, &activity); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}

	s.log.Debug().
		Str("task_id", activity.TaskID).
		Str("action", string(activity.Action)).
		Msg("activity recorded")
	return nil
}
