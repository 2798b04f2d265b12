package tasks

import (
	"fmt"

	"github.com/desertthunder/ytsnap/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveSource Phase = iota
	FetchPlaylist
	PersistSnapshot
	CaptureDone
)

func (p Phase) String() string {
	switch p {
	case ResolveSource:
		return "resolve_source"
	case FetchPlaylist:
		return "fetch_playlist"
	case PersistSnapshot:
		return "persist_snapshot"
	case CaptureDone:
		return "capture_done"
	default:
		return ""
	}
}

func resolveSourceUpdate(input string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveSource,
		Step:    1,
		Total:   3,
		Message: fmt.Sprintf("Resolving playlist id from %q...", input),
	}
}

func fetchPlaylistUpdate(playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    2,
		Total:   3,
		Message: fmt.Sprintf("Fetching playlist %s from YouTube...", playlistID),
	}
}

func persistSnapshotUpdate(data *models.PlaylistData) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PersistSnapshot,
		Step:    3,
		Total:   3,
		Message: fmt.Sprintf("Saving snapshot of %q (%d videos)...", data.Title, data.VideoCount),
		Data:    data,
	}
}

func captureDoneUpdate(snapshot *models.Snapshot) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CaptureDone,
		Step:    3,
		Total:   3,
		Message: fmt.Sprintf("Snapshot %s saved", snapshot.ID),
		Data:    snapshot,
	}
}
