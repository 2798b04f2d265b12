package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/ytsnap/internal/formatter"
	"github.com/desertthunder/ytsnap/internal/models"
	"github.com/desertthunder/ytsnap/internal/repositories"
	"github.com/desertthunder/ytsnap/internal/shared"
	"github.com/desertthunder/ytsnap/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Capture fetches a playlist and stores an immediate snapshot.
func (r *Runner) Capture(ctx context.Context, cmd *cli.Command) error {
	urlOrID := cmd.StringArg("playlist")
	if urlOrID == "" {
		return fmt.Errorf("%w: playlist URL or ID", shared.ErrMissingArgument)
	}

	config := r.loadConfig(cmd)
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshots := repositories.NewSnapshotRepository(db)
	engine := tasks.NewSnapshotEngine(r.source, snapshots)

	r.writePlain("Capturing playlist snapshot...\n\n")

	progressCh := make(chan tasks.ProgressUpdate, 10)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.ResolveSource:
				r.writePlain("🔗 %s\n", update.Message)
			case tasks.FetchPlaylist:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.PersistSnapshot:
				r.writePlain("💾 %s\n", update.Message)
			case tasks.CaptureDone:
				r.writePlain("✓ %s\n", update.Message)
			}
		}
	}()

	snapshot, err := engine.Capture(ctx, progressCh, r.owner(cmd), urlOrID, cmd.String("name"))
	close(progressCh)

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(snapshot, true)
	}

	r.writePlainln("Snapshot Saved")
	r.writePlain("ID:       %s\n", snapshot.ID)
	r.writePlain("Playlist: %s (%s)\n", snapshot.Title, snapshot.PlaylistID)
	r.writePlain("Videos:   %d\n", snapshot.VideoCount)
	r.writePlain("Captured: %s\n", snapshot.CapturedAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}

// SnapshotsOverview lists tracked playlists with counts and latest capture.
func (r *Runner) SnapshotsOverview(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshots := repositories.NewSnapshotRepository(db)
	overviews, err := snapshots.Overview(r.owner(cmd))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(overviews, true)
	}

	if len(overviews) == 0 {
		r.writePlain("No snapshots yet. Run 'ytsnap capture <playlist>' to create one.\n")
		return nil
	}

	r.writePlainHeader("Tracked Playlists")
	for _, o := range overviews {
		r.writePlain("%s — %s\n", o.PlaylistID, o.Title)
		r.writePlain("  %d snapshots, %d videos, last captured %s\n",
			o.SnapshotCount, o.LastVideoCount, o.LastCapturedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// SnapshotsList lists one playlist's snapshots, newest first.
func (r *Runner) SnapshotsList(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshots := repositories.NewSnapshotRepository(db)
	history, err := snapshots.ListByPlaylist(r.owner(cmd), cmd.String("playlist"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(history, true)
	}

	if len(history) == 0 {
		r.writePlain("No snapshots found for playlist %s\n", cmd.String("playlist"))
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Snapshots of %s", history[0].Title))
	for _, s := range history {
		r.writePlain("%s  %s  (%d videos)\n", s.ID, s.CapturedAt.Format("2006-01-02 15:04:05"), s.VideoCount)
	}
	return nil
}

// SnapshotsShow prints one snapshot with its full video list.
func (r *Runner) SnapshotsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: snapshot id", shared.ErrMissingArgument)
	}

	config := r.loadConfig(cmd)
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshots := repositories.NewSnapshotRepository(db)
	snapshot, err := snapshots.Get(r.owner(cmd), id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(snapshot, cmd.Bool("pretty"))
	}

	text, err := formatter.ExportToText(snapshot)
	if err != nil {
		return err
	}
	return r.writePlain("%s", text)
}

// SnapshotsDelete removes one stored snapshot.
func (r *Runner) SnapshotsDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: snapshot id", shared.ErrMissingArgument)
	}

	config := r.loadConfig(cmd)
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshots := repositories.NewSnapshotRepository(db)
	if err := snapshots.Delete(r.owner(cmd), id); err != nil {
		return err
	}

	r.writePlain("Deleted snapshot %s\n", id)
	return nil
}

// SnapshotsExport writes a snapshot to disk in the requested format.
func (r *Runner) SnapshotsExport(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: snapshot id", shared.ErrMissingArgument)
	}

	config := r.loadConfig(cmd)
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshots := repositories.NewSnapshotRepository(db)
	snapshot, err := snapshots.Get(r.owner(cmd), id)
	if err != nil {
		return err
	}

	format := strings.ToLower(cmd.String("format"))
	output := cmd.String("output")

	switch format {
	case "json":
		if output == "" {
			output = fmt.Sprintf("%s.json", snapshot.ID)
		}
		path, err := formatter.WriteJSONExport(snapshot, output)
		if err != nil {
			return err
		}
		r.writePlain("Exported snapshot to %s\n", path)
	case "csv":
		if output == "" {
			output = snapshot.ID
		}
		result, err := formatter.WriteCSVExport(snapshot, output)
		if err != nil {
			return err
		}
		r.writePlain("Exported videos to %s\n", result.VideosFile)
		r.writePlain("Exported metadata to %s\n", result.MetadataFile)
	case "markdown", "md":
		if output == "" {
			output = snapshot.ID
		}
		result, err := formatter.WriteMarkdownExport(snapshot, output, snapshot.ThumbnailURL)
		if err != nil {
			return err
		}
		r.writePlain("Exported snapshot to %s\n", result.Directory)
	case "text", "txt":
		if output == "" {
			output = fmt.Sprintf("%s_videos.txt", snapshot.ID)
		}
		path, err := formatter.WriteTextExport(snapshot, output)
		if err != nil {
			return err
		}
		r.writePlain("Exported snapshot to %s\n", path)
	default:
		return fmt.Errorf("%w: format %q (want json, csv, markdown or text)", shared.ErrInvalidFlag, format)
	}

	return nil
}

// SnapshotsImport stores a snapshot read from a JSON export file. Video
// positions are reordered and renumbered densely before validation.
func (r *Runner) SnapshotsImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: import file path", shared.ErrMissingArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	var payload models.Snapshot
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("%w: malformed import file: %v", shared.ErrInvalidInput, err)
	}
	if payload.PlaylistID == "" || payload.Title == "" || len(payload.Videos) == 0 {
		return fmt.Errorf("%w: import requires playlist id, title and videos", shared.ErrInvalidInput)
	}
	for _, v := range payload.Videos {
		if v.YouTubeVideoID == "" || v.Title == "" {
			return fmt.Errorf("%w: every video needs an id and title", shared.ErrInvalidInput)
		}
	}

	config := r.loadConfig(cmd)
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	videos := models.NormalizePositions(payload.Videos)

	capturedAt := payload.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = shared.UTCNow()
	}

	snapshot := &models.Snapshot{
		ID:           shared.GenerateID(),
		UserID:       r.owner(cmd),
		PlaylistID:   payload.PlaylistID,
		Title:        payload.Title,
		Description:  payload.Description,
		PublishedAt:  payload.PublishedAt,
		ThumbnailURL: payload.ThumbnailURL,
		Videos:       videos,
		VideoCount:   len(videos),
		CapturedAt:   capturedAt,
	}

	snapshots := repositories.NewSnapshotRepository(db)
	if err := snapshots.Create(snapshot); err != nil {
		return err
	}

	r.writePlain("Imported snapshot %s (%d videos) for playlist %s\n",
		snapshot.ID, snapshot.VideoCount, snapshot.PlaylistID)
	return nil
}

// SnapshotsDiff compares two stored snapshots and prints the classification.
func (r *Runner) SnapshotsDiff(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshots := repositories.NewSnapshotRepository(db)
	engine := tasks.NewSnapshotEngine(r.source, snapshots)
	owner := r.owner(cmd)

	base, err := snapshots.Get(owner, cmd.String("base"))
	if err != nil {
		return err
	}
	target, err := snapshots.Get(owner, cmd.String("target"))
	if err != nil {
		return err
	}

	diff := engine.Diff(base, target)

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(diff, true)
	case cmd.Bool("markdown"):
		report, err := formatter.DiffToMarkdown(diff)
		if err != nil {
			return err
		}
		return r.writePlain("%s", report)
	}

	r.writePlainHeader("Snapshot Comparison")
	r.writePlain("Base:   %s (%s)\n", base.ID, base.CapturedAt.Format("2006-01-02 15:04:05"))
	r.writePlain("Target: %s (%s)\n\n", target.ID, target.CapturedAt.Format("2006-01-02 15:04:05"))

	report, err := formatter.DiffToText(diff)
	if err != nil {
		return err
	}
	return r.writePlain("%s", report)
}
