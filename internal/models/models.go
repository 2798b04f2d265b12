package models

import (
	"fmt"
	"sort"
	"time"
)

// Video represents one playlist entry within a snapshot.
//
// A value type: it has no identity beyond its YouTube video id, and duplicate
// ids within one snapshot are preserved as-is.
type Video struct {
	YouTubeVideoID string `json:"youtubeVideoId"`
	Title          string `json:"title"`
	Position       int    `json:"position"` // 1-based rank within the snapshot
}

// NormalizePositions orders videos by their position field and renumbers
// them densely from 1, returning a new slice. Used when accepting video
// lists from outside the capture pipeline.
func NormalizePositions(videos []Video) []Video {
	normalized := make([]Video, len(videos))
	copy(normalized, videos)
	sort.SliceStable(normalized, func(i, j int) bool { return normalized[i].Position < normalized[j].Position })
	for i := range normalized {
		normalized[i].Position = i + 1
	}
	return normalized
}

// PlaylistData is the normalized result of fetching a playlist from the
// YouTube Data API: metadata plus the complete ordered video list.
type PlaylistData struct {
	PlaylistID   string     `json:"youtubePlaylistId"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
	ThumbnailURL string     `json:"thumbnailUrl"`
	Videos       []Video    `json:"videos"`
	VideoCount   int        `json:"videoCount"`
}

// Snapshot is an immutable capture of a playlist's ordered video list,
// exclusively owned by UserID. Once created it is never updated, only
// deleted.
type Snapshot struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	PlaylistID   string     `json:"youtubePlaylistId"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty"`
	Videos       []Video    `json:"videos"`
	VideoCount   int        `json:"videoCount"`
	CapturedAt   time.Time  `json:"capturedAt"`
}

// Validate checks snapshot integrity: required identifiers, the count
// matching the video list, and dense 1..N positions in list order.
func (s *Snapshot) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("snapshot missing user id")
	}
	if s.PlaylistID == "" {
		return fmt.Errorf("snapshot missing playlist id")
	}
	if s.Title == "" {
		return fmt.Errorf("snapshot missing title")
	}
	if s.VideoCount != len(s.Videos) {
		return fmt.Errorf("video count %d does not match %d videos", s.VideoCount, len(s.Videos))
	}
	for i, v := range s.Videos {
		if v.YouTubeVideoID == "" {
			return fmt.Errorf("video at position %d missing id", i+1)
		}
		if v.Position != i+1 {
			return fmt.Errorf("video %s has position %d, want %d", v.YouTubeVideoID, v.Position, i+1)
		}
	}
	return nil
}

// TaskStatus enumerates the lifecycle states of a scheduled task.
type TaskStatus string

const (
	TaskActive    TaskStatus = "active"
	TaskPaused    TaskStatus = "paused"
	TaskCompleted TaskStatus = "completed"
	TaskError     TaskStatus = "error"
)

// IsValid reports whether s is one of the known task statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskActive, TaskPaused, TaskCompleted, TaskError:
		return true
	}
	return false
}

// ScheduledTask describes a recurring capture of one playlist.
//
// Status moves to [TaskError] automatically when an execution fails and back
// to [TaskActive] on the next success; [TaskPaused] is only ever set by an
// explicit user update.
type ScheduledTask struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	PlaylistID   string     `json:"youtubePlaylistId"`
	PlaylistName string     `json:"playlistName"`
	CronSchedule string     `json:"cronSchedule"`
	LastRunAt    *time.Time `json:"lastRunAt"`
	Status       TaskStatus `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Validate checks that the task carries every required field and a known
// status. Cron syntax is validated by the scheduler, not here.
func (t *ScheduledTask) Validate() error {
	if t.UserID == "" {
		return fmt.Errorf("task missing user id")
	}
	if t.PlaylistID == "" {
		return fmt.Errorf("task missing playlist id")
	}
	if t.PlaylistName == "" {
		return fmt.Errorf("task missing playlist name")
	}
	if t.CronSchedule == "" {
		return fmt.Errorf("task missing cron schedule")
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("unknown task status %q", t.Status)
	}
	return nil
}
