package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytsnap/internal/models"
	"github.com/desertthunder/ytsnap/internal/services"
	"github.com/desertthunder/ytsnap/internal/shared"
)

// SnapshotStore defines the persistence operations the capture pipeline
// needs. Implemented by repositories.SnapshotRepository.
type SnapshotStore interface {
	Create(snapshot *models.Snapshot) error
}

// CaptureEngine defines operations for producing and comparing snapshots.
type CaptureEngine interface {
	// Capture fetches the playlist identified by urlOrID (a full URL or a
	// bare playlist id) on behalf of userID, persists the result, and
	// returns the stored snapshot.
	Capture(ctx context.Context, progress chan<- ProgressUpdate, userID, urlOrID, nameOverride string) (*models.Snapshot, error)

	// Diff classifies target's videos relative to base.
	Diff(base, target *models.Snapshot) *SnapshotDiff
}

// SnapshotEngine implements [CaptureEngine] over a playlist source and a
// snapshot store.
type SnapshotEngine struct {
	source services.PlaylistSource
	store  SnapshotStore
}

// NewSnapshotEngine creates a new SnapshotEngine with the provided source and store.
func NewSnapshotEngine(source services.PlaylistSource, store SnapshotStore) *SnapshotEngine {
	return &SnapshotEngine{source: source, store: store}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *SnapshotEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Capture produces and persists one snapshot.
//
// Error kinds: [shared.ErrInvalidURL] when no playlist id can be resolved,
// [shared.ErrPlaylistNotFound] when upstream reports the playlist gone,
// [shared.ErrAPIRequest] for transport failures, and [shared.ErrPersistence]
// when the store rejects the write. The capture timestamp is stamped at
// persistence time, not at fetch start.
func (e *SnapshotEngine) Capture(ctx context.Context, progress chan<- ProgressUpdate, userID, urlOrID, nameOverride string) (*models.Snapshot, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user id", shared.ErrInvalidInput)
	}

	e.sendProgress(progress, resolveSourceUpdate(urlOrID))

	playlistID, err := services.ExtractPlaylistID(urlOrID)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, fetchPlaylistUpdate(playlistID))

	data, err := e.source.GetPlaylistData(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}

	e.sendProgress(progress, persistSnapshotUpdate(data))

	title := data.Title
	if nameOverride != "" {
		title = nameOverride
	}

	snapshot := &models.Snapshot{
		UserID:       userID,
		PlaylistID:   data.PlaylistID,
		Title:        title,
		Description:  data.Description,
		PublishedAt:  data.PublishedAt,
		ThumbnailURL: data.ThumbnailURL,
		Videos:       data.Videos,
		VideoCount:   data.VideoCount,
		CapturedAt:   shared.UTCNow(),
	}

	if err := e.store.Create(snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}

	e.sendProgress(progress, captureDoneUpdate(snapshot))
	return snapshot, nil
}
