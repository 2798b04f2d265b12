package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsnap/internal/models"
	"github.com/desertthunder/ytsnap/internal/shared"
	"github.com/desertthunder/ytsnap/internal/tasks"
	"github.com/robfig/cron/v3"
)

// TaskStore defines the persistence operations the scheduler needs.
// Implemented by repositories.TaskRepository.
type TaskStore interface {
	Create(task *models.ScheduledTask) error
	Get(userID, id string) (*models.ScheduledTask, error)
	GetByID(id string) (*models.ScheduledTask, error)
	Update(task *models.ScheduledTask) error
	Delete(userID, id string) error
	List(userID string) ([]*models.ScheduledTask, error)
	ListActive() ([]*models.ScheduledTask, error)
}

// Capturer is the slice of [tasks.CaptureEngine] a tick invokes.
type Capturer interface {
	Capture(ctx context.Context, progress chan<- tasks.ProgressUpdate, userID, urlOrID, nameOverride string) (*models.Snapshot, error)
}

// Registry arms scheduled tasks on a cron runner.
//
// Invariants: at most one entry per task id (re-registration replaces in
// place), no concurrent self-invocation (a tick that overruns its next
// firing skips it), and no tick panics out of the runner.
type Registry struct {
	cron    *cron.Cron
	store   TaskStore
	capture Capturer
	logger  *log.Logger
	baseCtx context.Context

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// NewRegistry creates a Registry over the given store and capture engine.
// Schedules are evaluated in UTC.
func NewRegistry(store TaskStore, capture Capturer, logger *log.Logger) *Registry {
	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithParser(specParser),
		cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
	)
	return &Registry{
		cron:    c,
		store:   store,
		capture: capture,
		logger:  logger,
		baseCtx: context.Background(),
		entries: make(map[string]cron.EntryID),
	}
}

// Register arms a task, replacing any existing entry for the same id.
// Tasks whose status is not active are only removed, never armed, and an
// invalid schedule still removes the old entry before the error returns.
func (r *Registry) Register(task *models.ScheduledTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entryID, ok := r.entries[task.ID]; ok {
		r.cron.Remove(entryID)
		delete(r.entries, task.ID)
	}

	if err := ValidateSchedule(task.CronSchedule); err != nil {
		return err
	}

	if task.Status != models.TaskActive {
		return nil
	}

	taskID := task.ID
	entryID, err := r.cron.AddFunc(task.CronSchedule, func() { r.runTask(taskID) })
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidSchedule, err)
	}

	r.entries[taskID] = entryID
	r.logger.Info("task armed", "task_id", taskID, "schedule", task.CronSchedule)
	return nil
}

// Deregister removes the entry for taskID. Reports whether one existed.
func (r *Registry) Deregister(taskID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entryID, ok := r.entries[taskID]
	if !ok {
		return false
	}

	r.cron.Remove(entryID)
	delete(r.entries, taskID)
	r.logger.Info("task disarmed", "task_id", taskID)
	return true
}

// Init loads every active task from the store, arms each one, and starts
// the runner. A task that fails to arm is logged and skipped rather than
// aborting startup.
func (r *Registry) Init(ctx context.Context) error {
	r.baseCtx = ctx

	active, err := r.store.ListActive()
	if err != nil {
		return fmt.Errorf("failed to load active tasks: %w", err)
	}

	armed := 0
	for _, task := range active {
		if err := r.Register(task); err != nil {
			r.logger.Error("failed to arm task", "task_id", task.ID, "err", err)
			continue
		}
		armed++
	}

	r.cron.Start()
	r.logger.Info("scheduler started", "armed", armed, "skipped", len(active)-armed)
	return nil
}

// Stop halts the runner and waits for in-flight executions to finish.
func (r *Registry) Stop() {
	<-r.cron.Stop().Done()
	r.logger.Info("scheduler stopped")
}

// armed reports whether taskID currently holds a cron entry.
func (r *Registry) armed(taskID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[taskID]
	return ok
}

// runTask executes one tick. The persisted task is re-read first so that
// schedule or status edits made after arming take effect; a task deleted
// since arming disarms itself here.
func (r *Registry) runTask(taskID string) {
	task, err := r.store.GetByID(taskID)
	if err != nil {
		r.logger.Error("task gone before tick, disarming", "task_id", taskID, "err", err)
		r.Deregister(taskID)
		return
	}

	if task.Status == models.TaskPaused || task.Status == models.TaskCompleted {
		r.logger.Debug("skipping tick", "task_id", taskID, "status", task.Status)
		return
	}

	logger := shared.WithLogger(r.logger, "task_id", taskID, "playlist_id", task.PlaylistID)
	logger.Info("running scheduled capture")

	_, captureErr := r.capture.Capture(r.baseCtx, nil, task.UserID, task.PlaylistID, task.PlaylistName)
	if captureErr != nil {
		logger.Error("scheduled capture failed", "err", captureErr)
		task.Status = models.TaskError
	} else {
		now := shared.UTCNow()
		task.LastRunAt = &now
		task.Status = models.TaskActive
		logger.Info("scheduled capture complete")
	}

	if err := r.store.Update(task); err != nil {
		logger.Error("failed to persist task state", "err", err)
	}
}

// cronLogger adapts [log.Logger] to the cron runner's logging interface.
type cronLogger struct {
	logger *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.logger.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.logger.Error(msg, append([]any{"err", err}, keysAndValues...)...)
}
