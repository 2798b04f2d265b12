package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/ytsnap/internal/models"
	"github.com/desertthunder/ytsnap/internal/shared"
)

// SnapshotRepository persists playlist snapshots.
//
// Snapshots are immutable: there is no update path. The video list is stored
// as an ordered JSON array in the snapshot row, since videos are value
// objects with no identity outside their snapshot.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// PlaylistOverview summarizes one playlist's capture history: its latest
// snapshot plus how many snapshots exist for it.
type PlaylistOverview struct {
	PlaylistID     string    `json:"youtubePlaylistId"`
	Title          string    `json:"title"`
	ThumbnailURL   string    `json:"thumbnailUrl,omitempty"`
	LastSnapshotID string    `json:"lastSnapshotId"`
	LastCapturedAt time.Time `json:"lastCapturedAt"`
	LastVideoCount int       `json:"lastSnapshotVideoCount"`
	SnapshotCount  int       `json:"snapshotCount"`
}

// Create inserts a new snapshot with a generated ID.
func (r *SnapshotRepository) Create(snapshot *models.Snapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = shared.GenerateID()
	}

	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	videos, err := json.Marshal(snapshot.Videos)
	if err != nil {
		return fmt.Errorf("failed to encode videos: %w", err)
	}

	query := `
		INSERT INTO snapshots (id, user_id, playlist_id, title, description, published_at, thumbnail_url, videos, video_count, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		snapshot.ID,
		snapshot.UserID,
		snapshot.PlaylistID,
		snapshot.Title,
		snapshot.Description,
		nullableTime(snapshot.PublishedAt),
		snapshot.ThumbnailURL,
		string(videos),
		snapshot.VideoCount,
		snapshot.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

const snapshotColumns = "id, user_id, playlist_id, title, description, published_at, thumbnail_url, videos, video_count, captured_at"

// Get retrieves one snapshot owned by userID.
func (r *SnapshotRepository) Get(userID, id string) (*models.Snapshot, error) {
	query := fmt.Sprintf("SELECT %s FROM snapshots WHERE id = ? AND user_id = ?", snapshotColumns)
	return scanSnapshot(r.db.QueryRow(query, id, userID))
}

// ListByPlaylist retrieves the owner's snapshots of one playlist, newest first.
func (r *SnapshotRepository) ListByPlaylist(userID, playlistID string) ([]*models.Snapshot, error) {
	query := fmt.Sprintf("SELECT %s FROM snapshots WHERE user_id = ? AND playlist_id = ? ORDER BY captured_at DESC", snapshotColumns)

	rows, err := r.db.Query(query, userID, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return snapshots, nil
}

// Delete removes a snapshot owned by userID.
func (r *SnapshotRepository) Delete(userID, id string) error {
	result, err := r.db.Exec("DELETE FROM snapshots WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: snapshot %s", shared.ErrNotFound, id)
	}

	return nil
}

// Overview returns the latest snapshot per playlist for userID, with
// per-playlist snapshot counts, newest capture first.
func (r *SnapshotRepository) Overview(userID string) ([]PlaylistOverview, error) {
	query := `
		SELECT s.playlist_id, s.title, s.thumbnail_url, s.id, s.captured_at, s.video_count, latest.snapshot_count
		FROM snapshots s
		JOIN (
			SELECT playlist_id, MAX(captured_at) AS last_captured_at, COUNT(*) AS snapshot_count
			FROM snapshots
			WHERE user_id = ?
			GROUP BY playlist_id
		) latest ON s.playlist_id = latest.playlist_id AND s.captured_at = latest.last_captured_at
		WHERE s.user_id = ?
		GROUP BY s.playlist_id
		ORDER BY s.captured_at DESC
	`

	rows, err := r.db.Query(query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query overview: %w", err)
	}
	defer rows.Close()

	var overviews []PlaylistOverview
	for rows.Next() {
		var o PlaylistOverview
		if err := rows.Scan(&o.PlaylistID, &o.Title, &o.ThumbnailURL, &o.LastSnapshotID, &o.LastCapturedAt, &o.LastVideoCount, &o.SnapshotCount); err != nil {
			return nil, fmt.Errorf("failed to scan overview: %w", err)
		}
		overviews = append(overviews, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return overviews, nil
}

// rowScanner abstracts [sql.Row] and [sql.Rows] for shared scan logic.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSnapshot scans one row into a [models.Snapshot], decoding the embedded
// video list.
func scanSnapshot(row rowScanner) (*models.Snapshot, error) {
	var (
		snapshot    models.Snapshot
		publishedAt sql.NullTime
		videos      string
	)

	err := row.Scan(
		&snapshot.ID,
		&snapshot.UserID,
		&snapshot.PlaylistID,
		&snapshot.Title,
		&snapshot.Description,
		&publishedAt,
		&snapshot.ThumbnailURL,
		&videos,
		&snapshot.VideoCount,
		&snapshot.CapturedAt,
	)
	if err == sql.ErrNoRows {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(videos), &snapshot.Videos); err != nil {
		return nil, fmt.Errorf("failed to decode videos: %w", err)
	}

	snapshot.PublishedAt = timePtr(publishedAt)
	snapshot.CapturedAt = snapshot.CapturedAt.UTC()
	return &snapshot, nil
}
