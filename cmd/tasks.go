package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/ytsnap/internal/models"
	"github.com/desertthunder/ytsnap/internal/repositories"
	"github.com/desertthunder/ytsnap/internal/scheduler"
	"github.com/desertthunder/ytsnap/internal/shared"
	"github.com/desertthunder/ytsnap/internal/tasks"
	"github.com/urfave/cli/v3"
)

// taskService assembles the task lifecycle stack over an open database. The
// registry exists for schedule bookkeeping only; nothing starts the cron
// loop, so CLI task edits never fire captures.
func (r *Runner) taskService(db *sql.DB) *scheduler.TaskService {
	snapshots := repositories.NewSnapshotRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	engine := tasks.NewSnapshotEngine(r.source, snapshots)
	registry := scheduler.NewRegistry(taskRepo, engine, r.logger)
	return scheduler.NewTaskService(taskRepo, registry, r.logger)
}

func (r *Runner) writeTask(task *models.ScheduledTask) {
	lastRun := "never"
	if task.LastRunAt != nil {
		lastRun = task.LastRunAt.Format("2006-01-02 15:04:05")
	}
	r.writePlain("%s  [%s]  %s\n", task.ID, task.Status, task.PlaylistName)
	r.writePlain("  playlist %s, schedule %q, last run %s\n", task.PlaylistID, task.CronSchedule, lastRun)
}

// TasksList lists the owner's scheduled tasks, newest first.
func (r *Runner) TasksList(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	list, err := r.taskService(db).ListTasks(ctx, r.owner(cmd))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(list, true)
	}

	if len(list) == 0 {
		r.writePlain("No scheduled tasks. Run 'ytsnap tasks create' to add one.\n")
		return nil
	}

	r.writePlainHeader("Scheduled Tasks")
	for _, task := range list {
		r.writeTask(task)
	}
	return nil
}

// resolveSchedule turns the create command's flags into a cron expression:
// --schedule verbatim, otherwise the --every/--at picker.
func resolveSchedule(cmd *cli.Command) (string, error) {
	if expr := cmd.String("schedule"); expr != "" {
		return expr, nil
	}

	every := cmd.String("every")
	if every == "" {
		return "", fmt.Errorf("%w: either --schedule or --every is required", shared.ErrMissingArgument)
	}

	at, err := time.Parse("15:04", cmd.String("at"))
	if err != nil {
		return "", fmt.Errorf("%w: --at must be HH:MM, got %q", shared.ErrInvalidFlag, cmd.String("at"))
	}

	return scheduler.BuildSchedule(scheduler.SchedulePicker{
		Frequency:  scheduler.Frequency(every),
		Minute:     at.Minute(),
		Hour:       at.Hour(),
		Weekday:    time.Weekday(cmd.Int("weekday")),
		DayOfMonth: cmd.Int("day-of-month"),
	})
}

// TasksCreate schedules recurring captures of one playlist.
func (r *Runner) TasksCreate(ctx context.Context, cmd *cli.Command) error {
	schedule, err := resolveSchedule(cmd)
	if err != nil {
		return err
	}

	config := r.loadConfig(cmd)
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	task, err := r.taskService(db).CreateTask(ctx, r.owner(cmd), cmd.String("playlist"), cmd.String("name"), schedule)
	if err != nil {
		return err
	}

	r.writePlain("Created task %s for playlist %s (%s)\n", task.ID, task.PlaylistID, task.CronSchedule)
	r.writePlain("It will run while 'ytsnap serve' is up with the scheduler enabled.\n")
	return nil
}

// TasksUpdate patches a task's name, schedule, or status.
func (r *Runner) TasksUpdate(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: task id", shared.ErrMissingArgument)
	}

	var patch scheduler.TaskPatch
	if name := cmd.String("name"); name != "" {
		patch.PlaylistName = &name
	}
	if schedule := cmd.String("schedule"); schedule != "" {
		patch.CronSchedule = &schedule
	}
	if status := cmd.String("status"); status != "" {
		s := models.TaskStatus(status)
		patch.Status = &s
	}
	if patch.PlaylistName == nil && patch.CronSchedule == nil && patch.Status == nil {
		return fmt.Errorf("%w: nothing to update, pass --name, --schedule or --status", shared.ErrMissingArgument)
	}

	config := r.loadConfig(cmd)
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	task, err := r.taskService(db).UpdateTask(ctx, r.owner(cmd), id, patch)
	if err != nil {
		return err
	}

	r.writePlain("Updated task:\n")
	r.writeTask(task)
	return nil
}

func (r *Runner) setTaskStatus(ctx context.Context, cmd *cli.Command, status models.TaskStatus) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: task id", shared.ErrMissingArgument)
	}

	config := r.loadConfig(cmd)
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	task, err := r.taskService(db).UpdateTask(ctx, r.owner(cmd), id, scheduler.TaskPatch{Status: &status})
	if err != nil {
		return err
	}

	r.writePlain("Task %s is now %s\n", task.ID, task.Status)
	return nil
}

// TasksPause marks a task paused so scheduled captures stop.
func (r *Runner) TasksPause(ctx context.Context, cmd *cli.Command) error {
	return r.setTaskStatus(ctx, cmd, models.TaskPaused)
}

// TasksResume re-activates a paused task.
func (r *Runner) TasksResume(ctx context.Context, cmd *cli.Command) error {
	return r.setTaskStatus(ctx, cmd, models.TaskActive)
}

// TasksDelete removes a task.
func (r *Runner) TasksDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: task id", shared.ErrMissingArgument)
	}

	config := r.loadConfig(cmd)
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := r.taskService(db).DeleteTask(ctx, r.owner(cmd), id); err != nil {
		return err
	}

	r.writePlain("Deleted task %s\n", id)
	return nil
}
