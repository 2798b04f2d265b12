package scheduler

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsnap/internal/models"
	"github.com/desertthunder/ytsnap/internal/services"
	"github.com/desertthunder/ytsnap/internal/shared"
)

// TaskPatch describes a partial update to a scheduled task. Nil fields are
// left untouched.
type TaskPatch struct {
	PlaylistName *string
	CronSchedule *string
	Status       *models.TaskStatus
}

// TaskService is the owner-scoped lifecycle API for scheduled tasks. Every
// mutation keeps the persisted row and the registry's armed entry in sync.
type TaskService struct {
	store    TaskStore
	registry *Registry
	logger   *log.Logger
}

// NewTaskService creates a new TaskService with the provided store and registry.
func NewTaskService(store TaskStore, registry *Registry, logger *log.Logger) *TaskService {
	return &TaskService{store: store, registry: registry, logger: logger}
}

// CreateTask persists a new active task and arms it. The playlist may be
// given as a full URL or a bare id; the name defaults to the playlist id
// when empty.
func (s *TaskService) CreateTask(ctx context.Context, userID, urlOrID, name, cronExpr string) (*models.ScheduledTask, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user id", shared.ErrInvalidInput)
	}

	playlistID, err := services.ExtractPlaylistID(urlOrID)
	if err != nil {
		return nil, err
	}
	if err := ValidateSchedule(cronExpr); err != nil {
		return nil, err
	}

	if name == "" {
		name = playlistID
	}

	task := &models.ScheduledTask{
		UserID:       userID,
		PlaylistID:   playlistID,
		PlaylistName: name,
		CronSchedule: cronExpr,
		Status:       models.TaskActive,
	}

	if err := s.store.Create(task); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}
	if err := s.registry.Register(task); err != nil {
		return nil, err
	}

	s.logger.Info("task created", "task_id", task.ID, "playlist_id", playlistID, "schedule", cronExpr)
	return task, nil
}

// GetTask retrieves one task owned by userID.
func (s *TaskService) GetTask(ctx context.Context, userID, taskID string) (*models.ScheduledTask, error) {
	return s.store.Get(userID, taskID)
}

// ListTasks retrieves the owner's tasks, newest first.
func (s *TaskService) ListTasks(ctx context.Context, userID string) ([]*models.ScheduledTask, error) {
	return s.store.List(userID)
}

// UpdateTask applies a patch to a task owned by userID. When the patch
// touches the recurrence or status, the cron entry is re-armed or disarmed
// to match the new state.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID string, patch TaskPatch) (*models.ScheduledTask, error) {
	task, err := s.store.Get(userID, taskID)
	if err != nil {
		return nil, err
	}

	if patch.PlaylistName != nil {
		if *patch.PlaylistName == "" {
			return nil, fmt.Errorf("%w: playlist name cannot be empty", shared.ErrInvalidInput)
		}
		task.PlaylistName = *patch.PlaylistName
	}
	if patch.CronSchedule != nil {
		if err := ValidateSchedule(*patch.CronSchedule); err != nil {
			return nil, err
		}
		task.CronSchedule = *patch.CronSchedule
	}
	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", shared.ErrInvalidInput, *patch.Status)
		}
		task.Status = *patch.Status
	}

	if err := s.store.Update(task); err != nil {
		return nil, err
	}

	// A name-only patch leaves the armed entry alone so its next firing
	// time is not reset.
	if patch.CronSchedule != nil || patch.Status != nil {
		if task.Status == models.TaskActive {
			if err := s.registry.Register(task); err != nil {
				return nil, err
			}
		} else {
			s.registry.Deregister(task.ID)
		}
	}

	s.logger.Info("task updated", "task_id", task.ID, "status", task.Status)
	return task, nil
}

// DeleteTask disarms and removes a task owned by userID.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	if _, err := s.store.Get(userID, taskID); err != nil {
		return err
	}

	s.registry.Deregister(taskID)

	if err := s.store.Delete(userID, taskID); err != nil {
		return err
	}

	s.logger.Info("task deleted", "task_id", taskID)
	return nil
}
