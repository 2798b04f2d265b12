package models

import (
	"testing"
	"time"
)

func TestSnapshot(t *testing.T) {
	valid := func() *Snapshot {
		return &Snapshot{
			ID:         "snap-1",
			UserID:     "user-1",
			PlaylistID: "PL123",
			Title:      "Mix",
			Videos: []Video{
				{YouTubeVideoID: "a", Title: "A", Position: 1},
				{YouTubeVideoID: "b", Title: "B", Position: 2},
			},
			VideoCount: 2,
			CapturedAt: time.Now().UTC(),
		}
	}

	t.Run("Validate", func(t *testing.T) {
		t.Run("accepts a well-formed snapshot", func(t *testing.T) {
			if err := valid().Validate(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("rejects count mismatch", func(t *testing.T) {
			s := valid()
			s.VideoCount = 5
			if err := s.Validate(); err == nil {
				t.Fatal("expected error for count mismatch")
			}
		})

		t.Run("rejects gapped positions", func(t *testing.T) {
			s := valid()
			s.Videos[1].Position = 3
			if err := s.Validate(); err == nil {
				t.Fatal("expected error for gapped positions")
			}
		})

		t.Run("rejects missing owner", func(t *testing.T) {
			s := valid()
			s.UserID = ""
			if err := s.Validate(); err == nil {
				t.Fatal("expected error for missing user id")
			}
		})

		t.Run("accepts empty video list", func(t *testing.T) {
			s := valid()
			s.Videos = nil
			s.VideoCount = 0
			if err := s.Validate(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	})
}

func TestScheduledTask(t *testing.T) {
	valid := func() *ScheduledTask {
		return &ScheduledTask{
			ID:           "task-1",
			UserID:       "user-1",
			PlaylistID:   "PL123",
			PlaylistName: "Mix",
			CronSchedule: "30 14 * * 1",
			Status:       TaskActive,
			CreatedAt:    time.Now().UTC(),
			UpdatedAt:    time.Now().UTC(),
		}
	}

	t.Run("Validate accepts a well-formed task", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Validate rejects unknown status", func(t *testing.T) {
		task := valid()
		task.Status = TaskStatus("sleeping")
		if err := task.Validate(); err == nil {
			t.Fatal("expected error for unknown status")
		}
	})

	t.Run("Validate rejects empty schedule", func(t *testing.T) {
		task := valid()
		task.CronSchedule = ""
		if err := task.Validate(); err == nil {
			t.Fatal("expected error for empty schedule")
		}
	})

	t.Run("IsValid", func(t *testing.T) {
		for _, status := range []TaskStatus{TaskActive, TaskPaused, TaskCompleted, TaskError} {
			if !status.IsValid() {
				t.Errorf("expected %q to be valid", status)
			}
		}
		if TaskStatus("").IsValid() {
			t.Error("expected empty status to be invalid")
		}
	})
}
