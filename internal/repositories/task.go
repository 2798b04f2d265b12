package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/ytsnap/internal/models"
	"github.com/desertthunder/ytsnap/internal/shared"
)

// TaskRepository persists scheduled capture tasks.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository with the given database connection
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = "id, user_id, playlist_id, playlist_name, cron_schedule, last_run_at, status, created_at, updated_at"

// Create inserts a new task with a generated ID and creation timestamps.
func (r *TaskRepository) Create(task *models.ScheduledTask) error {
	if task.ID == "" {
		task.ID = shared.GenerateID()
	}
	if task.Status == "" {
		task.Status = models.TaskActive
	}

	now := shared.UTCNow()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := task.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO scheduled_tasks (id, user_id, playlist_id, playlist_name, cron_schedule, last_run_at, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		task.ID,
		task.UserID,
		task.PlaylistID,
		task.PlaylistName,
		task.CronSchedule,
		nullableTime(task.LastRunAt),
		string(task.Status),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// Get retrieves one task owned by userID.
func (r *TaskRepository) Get(userID, id string) (*models.ScheduledTask, error) {
	query := fmt.Sprintf("SELECT %s FROM scheduled_tasks WHERE id = ? AND user_id = ?", taskColumns)
	return scanTask(r.db.QueryRow(query, id, userID))
}

// GetByID retrieves a task by id alone.
//
// Used by the scheduler when a job fires: the registry knows task identity,
// not ownership, and must see the current persisted state.
func (r *TaskRepository) GetByID(id string) (*models.ScheduledTask, error) {
	query := fmt.Sprintf("SELECT %s FROM scheduled_tasks WHERE id = ?", taskColumns)
	return scanTask(r.db.QueryRow(query, id))
}

// Update rewrites a task's mutable fields and bumps its updated timestamp.
func (r *TaskRepository) Update(task *models.ScheduledTask) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	task.UpdatedAt = shared.UTCNow()

	query := `
		UPDATE scheduled_tasks
		SET playlist_id = ?, playlist_name = ?, cron_schedule = ?, last_run_at = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		task.PlaylistID,
		task.PlaylistName,
		task.CronSchedule,
		nullableTime(task.LastRunAt),
		string(task.Status),
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: task %s", shared.ErrNotFound, task.ID)
	}

	return nil
}

// Delete removes a task owned by userID.
func (r *TaskRepository) Delete(userID, id string) error {
	result, err := r.db.Exec("DELETE FROM scheduled_tasks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: task %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves the owner's tasks, newest first.
func (r *TaskRepository) List(userID string) ([]*models.ScheduledTask, error) {
	query := fmt.Sprintf("SELECT %s FROM scheduled_tasks WHERE user_id = ? ORDER BY created_at DESC", taskColumns)
	return r.queryTasks(query, userID)
}

// ListActive retrieves every task with active status, across all owners.
//
// Used once at startup to arm the scheduler.
func (r *TaskRepository) ListActive() ([]*models.ScheduledTask, error) {
	query := fmt.Sprintf("SELECT %s FROM scheduled_tasks WHERE status = ? ORDER BY created_at ASC", taskColumns)
	return r.queryTasks(query, string(models.TaskActive))
}

func (r *TaskRepository) queryTasks(query string, args ...any) ([]*models.ScheduledTask, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.ScheduledTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tasks, nil
}

// scanTask scans one row into a [models.ScheduledTask].
func scanTask(row rowScanner) (*models.ScheduledTask, error) {
	var (
		task      models.ScheduledTask
		lastRunAt sql.NullTime
		status    string
	)

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.PlaylistID,
		&task.PlaylistName,
		&task.CronSchedule,
		&lastRunAt,
		&status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	task.LastRunAt = timePtr(lastRunAt)
	task.Status = models.TaskStatus(status)
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	return &task, nil
}
