package repositories

import (
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/ytsnap/internal/models"
	"github.com/desertthunder/ytsnap/internal/shared"
)

func setupDB(t *testing.T) (*SnapshotRepository, *TaskRepository) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewSnapshotRepository(db), NewTaskRepository(db)
}

func sampleSnapshot(userID, playlistID string, capturedAt time.Time, ids ...string) *models.Snapshot {
	videos := make([]models.Video, len(ids))
	for i, id := range ids {
		videos[i] = models.Video{YouTubeVideoID: id, Title: "Video " + id, Position: i + 1}
	}
	return &models.Snapshot{
		UserID:     userID,
		PlaylistID: playlistID,
		Title:      "Playlist " + playlistID,
		Videos:     videos,
		VideoCount: len(videos),
		CapturedAt: capturedAt,
	}
}

func TestSnapshotRepository(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("Create and Get round-trip", func(t *testing.T) {
		snapshots, _ := setupDB(t)

		published := now.Add(-24 * time.Hour)
		snap := sampleSnapshot("user-1", "PL123", now, "a", "b")
		snap.PublishedAt = &published
		snap.Description = "desc"

		if err := snapshots.Create(snap); err != nil {
			t.Fatalf("failed to create snapshot: %v", err)
		}
		if snap.ID == "" {
			t.Fatal("expected generated id")
		}

		got, err := snapshots.Get("user-1", snap.ID)
		if err != nil {
			t.Fatalf("failed to get snapshot: %v", err)
		}

		if got.PlaylistID != "PL123" || got.VideoCount != 2 || len(got.Videos) != 2 {
			t.Errorf("unexpected snapshot %+v", got)
		}
		if got.Videos[1].YouTubeVideoID != "b" || got.Videos[1].Position != 2 {
			t.Errorf("video order not preserved: %+v", got.Videos)
		}
		if got.PublishedAt == nil || !got.PublishedAt.UTC().Equal(published) {
			t.Errorf("expected published %v, got %v", published, got.PublishedAt)
		}
		if !got.CapturedAt.Equal(now) {
			t.Errorf("expected captured %v, got %v", now, got.CapturedAt)
		}
	})

	t.Run("Create rejects invalid snapshots", func(t *testing.T) {
		snapshots, _ := setupDB(t)

		snap := sampleSnapshot("user-1", "PL123", now, "a")
		snap.VideoCount = 9
		if err := snapshots.Create(snap); err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("Get enforces ownership", func(t *testing.T) {
		snapshots, _ := setupDB(t)

		snap := sampleSnapshot("user-1", "PL123", now, "a")
		if err := snapshots.Create(snap); err != nil {
			t.Fatalf("failed to create snapshot: %v", err)
		}

		if _, err := snapshots.Get("user-2", snap.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
		}
	})

	t.Run("ListByPlaylist returns newest first", func(t *testing.T) {
		snapshots, _ := setupDB(t)

		older := sampleSnapshot("user-1", "PL123", now.Add(-time.Hour), "a")
		newer := sampleSnapshot("user-1", "PL123", now, "a", "b")
		other := sampleSnapshot("user-1", "PL999", now, "c")
		foreign := sampleSnapshot("user-2", "PL123", now, "d")

		for _, s := range []*models.Snapshot{older, newer, other, foreign} {
			if err := snapshots.Create(s); err != nil {
				t.Fatalf("failed to create snapshot: %v", err)
			}
		}

		list, err := snapshots.ListByPlaylist("user-1", "PL123")
		if err != nil {
			t.Fatalf("failed to list snapshots: %v", err)
		}

		if len(list) != 2 {
			t.Fatalf("expected 2 snapshots, got %d", len(list))
		}
		if list[0].ID != newer.ID {
			t.Errorf("expected newest first, got %s", list[0].ID)
		}
	})

	t.Run("Delete removes only the owner's snapshot", func(t *testing.T) {
		snapshots, _ := setupDB(t)

		snap := sampleSnapshot("user-1", "PL123", now, "a")
		if err := snapshots.Create(snap); err != nil {
			t.Fatalf("failed to create snapshot: %v", err)
		}

		if err := snapshots.Delete("user-2", snap.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
		}
		if err := snapshots.Delete("user-1", snap.ID); err != nil {
			t.Fatalf("failed to delete snapshot: %v", err)
		}
		if err := snapshots.Delete("user-1", snap.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("Overview aggregates latest snapshot per playlist", func(t *testing.T) {
		snapshots, _ := setupDB(t)

		fixtures := []*models.Snapshot{
			sampleSnapshot("user-1", "PL123", now.Add(-2*time.Hour), "a"),
			sampleSnapshot("user-1", "PL123", now.Add(-time.Hour), "a", "b"),
			sampleSnapshot("user-1", "PL123", now, "a", "b", "c"),
			sampleSnapshot("user-1", "PL999", now.Add(-time.Minute), "x"),
			sampleSnapshot("user-2", "PL123", now, "z"),
		}
		for _, s := range fixtures {
			if err := snapshots.Create(s); err != nil {
				t.Fatalf("failed to create snapshot: %v", err)
			}
		}

		overview, err := snapshots.Overview("user-1")
		if err != nil {
			t.Fatalf("failed to query overview: %v", err)
		}

		if len(overview) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(overview))
		}

		first := overview[0]
		if first.PlaylistID != "PL123" {
			t.Errorf("expected PL123 first (newest capture), got %s", first.PlaylistID)
		}
		if first.SnapshotCount != 3 {
			t.Errorf("expected 3 snapshots counted, got %d", first.SnapshotCount)
		}
		if first.LastVideoCount != 3 {
			t.Errorf("expected latest video count 3, got %d", first.LastVideoCount)
		}
		if !first.LastCapturedAt.UTC().Equal(now) {
			t.Errorf("expected latest capture %v, got %v", now, first.LastCapturedAt)
		}
	})
}

func sampleTask(userID, playlistID string) *models.ScheduledTask {
	return &models.ScheduledTask{
		UserID:       userID,
		PlaylistID:   playlistID,
		PlaylistName: "Playlist " + playlistID,
		CronSchedule: "30 14 * * 1",
		Status:       models.TaskActive,
	}
}

func TestTaskRepository(t *testing.T) {
	t.Run("Create and Get round-trip", func(t *testing.T) {
		_, tasks := setupDB(t)

		task := sampleTask("user-1", "PL123")
		if err := tasks.Create(task); err != nil {
			t.Fatalf("failed to create task: %v", err)
		}
		if task.ID == "" || task.CreatedAt.IsZero() {
			t.Fatal("expected generated id and timestamps")
		}

		got, err := tasks.Get("user-1", task.ID)
		if err != nil {
			t.Fatalf("failed to get task: %v", err)
		}
		if got.CronSchedule != "30 14 * * 1" || got.Status != models.TaskActive {
			t.Errorf("unexpected task %+v", got)
		}
		if got.LastRunAt != nil {
			t.Errorf("expected nil last run, got %v", got.LastRunAt)
		}
	})

	t.Run("Create defaults status to active", func(t *testing.T) {
		_, tasks := setupDB(t)

		task := sampleTask("user-1", "PL123")
		task.Status = ""
		if err := tasks.Create(task); err != nil {
			t.Fatalf("failed to create task: %v", err)
		}
		if task.Status != models.TaskActive {
			t.Errorf("expected active status, got %s", task.Status)
		}
	})

	t.Run("Update persists status transitions and last run", func(t *testing.T) {
		_, tasks := setupDB(t)

		task := sampleTask("user-1", "PL123")
		if err := tasks.Create(task); err != nil {
			t.Fatalf("failed to create task: %v", err)
		}

		ranAt := shared.UTCNow()
		task.Status = models.TaskError
		task.LastRunAt = &ranAt
		if err := tasks.Update(task); err != nil {
			t.Fatalf("failed to update task: %v", err)
		}

		got, err := tasks.GetByID(task.ID)
		if err != nil {
			t.Fatalf("failed to get task: %v", err)
		}
		if got.Status != models.TaskError {
			t.Errorf("expected error status, got %s", got.Status)
		}
		if got.LastRunAt == nil || !got.LastRunAt.UTC().Equal(ranAt) {
			t.Errorf("expected last run %v, got %v", ranAt, got.LastRunAt)
		}
	})

	t.Run("Update of a missing task reports not found", func(t *testing.T) {
		_, tasks := setupDB(t)

		task := sampleTask("user-1", "PL123")
		task.ID = "missing"
		task.CreatedAt = shared.UTCNow()
		task.UpdatedAt = task.CreatedAt
		if err := tasks.Update(task); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List scopes to owner", func(t *testing.T) {
		_, tasks := setupDB(t)

		mine := sampleTask("user-1", "PL123")
		theirs := sampleTask("user-2", "PL123")
		for _, task := range []*models.ScheduledTask{mine, theirs} {
			if err := tasks.Create(task); err != nil {
				t.Fatalf("failed to create task: %v", err)
			}
		}

		list, err := tasks.List("user-1")
		if err != nil {
			t.Fatalf("failed to list tasks: %v", err)
		}
		if len(list) != 1 || list[0].ID != mine.ID {
			t.Errorf("expected only user-1's task, got %+v", list)
		}
	})

	t.Run("ListActive crosses owners and filters status", func(t *testing.T) {
		_, tasks := setupDB(t)

		active1 := sampleTask("user-1", "PL123")
		active2 := sampleTask("user-2", "PL999")
		paused := sampleTask("user-1", "PL555")
		paused.Status = models.TaskPaused

		for _, task := range []*models.ScheduledTask{active1, active2, paused} {
			if err := tasks.Create(task); err != nil {
				t.Fatalf("failed to create task: %v", err)
			}
		}

		list, err := tasks.ListActive()
		if err != nil {
			t.Fatalf("failed to list active tasks: %v", err)
		}
		if len(list) != 2 {
			t.Errorf("expected 2 active tasks, got %d", len(list))
		}
		for _, task := range list {
			if task.Status != models.TaskActive {
				t.Errorf("expected active, got %s", task.Status)
			}
		}
	})

	t.Run("Delete enforces ownership", func(t *testing.T) {
		_, tasks := setupDB(t)

		task := sampleTask("user-1", "PL123")
		if err := tasks.Create(task); err != nil {
			t.Fatalf("failed to create task: %v", err)
		}

		if err := tasks.Delete("user-2", task.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
		}
		if err := tasks.Delete("user-1", task.ID); err != nil {
			t.Fatalf("failed to delete task: %v", err)
		}
	})
}
