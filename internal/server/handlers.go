package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsnap/internal/models"
	"github.com/desertthunder/ytsnap/internal/repositories"
	"github.com/desertthunder/ytsnap/internal/scheduler"
	"github.com/desertthunder/ytsnap/internal/shared"
	"github.com/desertthunder/ytsnap/internal/tasks"
)

// SnapshotStore defines the snapshot persistence operations the API needs.
// Implemented by [repositories.SnapshotRepository].
type SnapshotStore interface {
	Create(snapshot *models.Snapshot) error
	Get(userID, id string) (*models.Snapshot, error)
	ListByPlaylist(userID, playlistID string) ([]*models.Snapshot, error)
	Delete(userID, id string) error
	Overview(userID string) ([]repositories.PlaylistOverview, error)
}

// TaskManager defines the scheduled task lifecycle operations the API needs.
// Implemented by [scheduler.TaskService].
type TaskManager interface {
	CreateTask(ctx context.Context, userID, urlOrID, name, cronExpr string) (*models.ScheduledTask, error)
	GetTask(ctx context.Context, userID, taskID string) (*models.ScheduledTask, error)
	ListTasks(ctx context.Context, userID string) ([]*models.ScheduledTask, error)
	UpdateTask(ctx context.Context, userID, taskID string, patch scheduler.TaskPatch) (*models.ScheduledTask, error)
	DeleteTask(ctx context.Context, userID, taskID string) error
}

// API bundles the service's JSON endpoints over captures, snapshots, diffs,
// and scheduled tasks.
type API struct {
	engine    tasks.CaptureEngine
	snapshots SnapshotStore
	tasks     TaskManager
	logger    *log.Logger
}

// NewAPI creates an API over the given capture engine, snapshot store, and
// task manager.
func NewAPI(engine tasks.CaptureEngine, snapshots SnapshotStore, taskManager TaskManager, logger *log.Logger) *API {
	return &API{engine: engine, snapshots: snapshots, tasks: taskManager, logger: logger}
}

// NewRouter assembles the full route table: a public welcome route plus the
// authenticated /api surface.
func NewRouter(api *API, verifier TokenVerifier, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(LoggingMiddleware(logger))

	router.Handle(http.MethodGet, "/{$}", http.HandlerFunc(welcome))
	api.Register(router, RequireAuth(verifier))

	return router
}

// Register mounts every API route on the router, wrapped with auth.
func (a *API) Register(r Router, auth Middleware) {
	route := func(method, path string, handler http.HandlerFunc) {
		r.Handle(method, path, auth(handler))
	}

	route(http.MethodPost, "/api/playlists/capture", a.Capture)
	route(http.MethodGet, "/api/playlists/overview", a.Overview)
	route(http.MethodGet, "/api/playlists/{playlistId}/snapshots", a.ListSnapshots)

	route(http.MethodGet, "/api/snapshots/{snapshotId}", a.GetSnapshot)
	route(http.MethodDelete, "/api/snapshots/{snapshotId}", a.DeleteSnapshot)
	route(http.MethodGet, "/api/snapshots/{snapshotId}/export", a.ExportSnapshot)
	route(http.MethodPost, "/api/snapshots/import", a.ImportSnapshot)
	route(http.MethodGet, "/api/snapshots/{baseId}/diff/{targetId}", a.DiffSnapshots)

	route(http.MethodPost, "/api/scheduled-tasks", a.CreateTask)
	route(http.MethodGet, "/api/scheduled-tasks", a.ListTasks)
	route(http.MethodGet, "/api/scheduled-tasks/{taskId}", a.GetTask)
	route(http.MethodPut, "/api/scheduled-tasks/{taskId}", a.UpdateTask)
	route(http.MethodDelete, "/api/scheduled-tasks/{taskId}", a.DeleteTask)
}

func welcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "Playlist snapshot service ready.")
}

// Capture fetches a playlist and persists a new snapshot for the caller.
func (a *API) Capture(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PlaylistURL string `json:"playlistUrl"`
		Name        string `json:"initialPlaylistName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.PlaylistURL == "" {
		writeError(w, http.StatusBadRequest, "playlist URL is required")
		return
	}

	snapshot, err := a.engine.Capture(r.Context(), nil, UserID(r), body.PlaylistURL, body.Name)
	if err != nil {
		a.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, snapshot)
}

// Overview lists the caller's playlists with their latest snapshot and
// per-playlist snapshot counts.
func (a *API) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := a.snapshots.Overview(UserID(r))
	if err != nil {
		a.respondError(w, err)
		return
	}
	if overview == nil {
		overview = []repositories.PlaylistOverview{}
	}

	writeJSON(w, http.StatusOK, overview)
}

// ListSnapshots returns the caller's capture history for one playlist,
// newest first.
func (a *API) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	snapshots, err := a.snapshots.ListByPlaylist(UserID(r), r.PathValue("playlistId"))
	if err != nil {
		a.respondError(w, err)
		return
	}
	if len(snapshots) == 0 {
		writeError(w, http.StatusNotFound, "no snapshots found for this playlist")
		return
	}

	writeJSON(w, http.StatusOK, snapshots)
}

// GetSnapshot returns one snapshot owned by the caller.
func (a *API) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := a.snapshots.Get(UserID(r), r.PathValue("snapshotId"))
	if err != nil {
		a.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// DeleteSnapshot removes one snapshot owned by the caller.
func (a *API) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := a.snapshots.Delete(UserID(r), r.PathValue("snapshotId")); err != nil {
		a.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "snapshot deleted"})
}

// ExportSnapshot serves one snapshot as a downloadable JSON attachment.
func (a *API) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := a.snapshots.Get(UserID(r), r.PathValue("snapshotId"))
	if err != nil {
		a.respondError(w, err)
		return
	}

	filename := fmt.Sprintf("playlist_snapshot_%s_%s.json", snapshot.PlaylistID, snapshot.CapturedAt.Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	writeJSON(w, http.StatusOK, snapshot)
}

// ImportSnapshot persists a previously exported snapshot for the caller.
//
// Videos are re-ordered by their position field and renumbered densely, so
// an export from another instance always round-trips into a valid snapshot.
func (a *API) ImportSnapshot(w http.ResponseWriter, r *http.Request) {
	var payload models.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid snapshot data")
		return
	}
	if payload.PlaylistID == "" || payload.Title == "" || len(payload.Videos) == 0 {
		writeError(w, http.StatusBadRequest, "invalid snapshot data: playlist id, title, and videos are required")
		return
	}
	for _, video := range payload.Videos {
		if video.YouTubeVideoID == "" || video.Title == "" {
			writeError(w, http.StatusBadRequest, "invalid snapshot data: videos must have an id and title")
			return
		}
	}

	videos := models.NormalizePositions(payload.Videos)

	capturedAt := payload.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = shared.UTCNow()
	}

	snapshot := &models.Snapshot{
		UserID:       UserID(r),
		PlaylistID:   payload.PlaylistID,
		Title:        payload.Title,
		Description:  payload.Description,
		PublishedAt:  payload.PublishedAt,
		ThumbnailURL: payload.ThumbnailURL,
		Videos:       videos,
		VideoCount:   len(videos),
		CapturedAt:   capturedAt,
	}

	if err := a.snapshots.Create(snapshot); err != nil {
		a.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, snapshot)
}

// DiffSnapshots compares two of the caller's snapshots.
func (a *API) DiffSnapshots(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r)

	base, err := a.snapshots.Get(userID, r.PathValue("baseId"))
	if err != nil {
		a.respondError(w, err)
		return
	}
	target, err := a.snapshots.Get(userID, r.PathValue("targetId"))
	if err != nil {
		a.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		BaseID   string              `json:"baseSnapshotId"`
		TargetID string              `json:"targetSnapshotId"`
		Diff     *tasks.SnapshotDiff `json:"diff"`
	}{base.ID, target.ID, a.engine.Diff(base, target)})
}

// CreateTask schedules a recurring capture for the caller.
func (a *API) CreateTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PlaylistID   string `json:"youtubePlaylistId"`
		PlaylistName string `json:"playlistName"`
		CronSchedule string `json:"cronSchedule"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.PlaylistID == "" || body.CronSchedule == "" {
		writeError(w, http.StatusBadRequest, "missing required fields: youtubePlaylistId and cronSchedule")
		return
	}

	task, err := a.tasks.CreateTask(r.Context(), UserID(r), body.PlaylistID, body.PlaylistName, body.CronSchedule)
	if err != nil {
		a.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// ListTasks returns the caller's scheduled tasks, newest first.
func (a *API) ListTasks(w http.ResponseWriter, r *http.Request) {
	list, err := a.tasks.ListTasks(r.Context(), UserID(r))
	if err != nil {
		a.respondError(w, err)
		return
	}
	if list == nil {
		list = []*models.ScheduledTask{}
	}

	writeJSON(w, http.StatusOK, list)
}

// GetTask returns one scheduled task owned by the caller.
func (a *API) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := a.tasks.GetTask(r.Context(), UserID(r), r.PathValue("taskId"))
	if err != nil {
		a.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// UpdateTask applies a partial update to one of the caller's tasks and
// re-arms or disarms its schedule accordingly.
func (a *API) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PlaylistName *string `json:"playlistName"`
		CronSchedule *string `json:"cronSchedule"`
		Status       *string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := scheduler.TaskPatch{
		PlaylistName: body.PlaylistName,
		CronSchedule: body.CronSchedule,
	}
	if body.Status != nil {
		status := models.TaskStatus(*body.Status)
		patch.Status = &status
	}

	task, err := a.tasks.UpdateTask(r.Context(), UserID(r), r.PathValue("taskId"), patch)
	if err != nil {
		a.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// DeleteTask disarms and removes one of the caller's tasks.
func (a *API) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := a.tasks.DeleteTask(r.Context(), UserID(r), r.PathValue("taskId")); err != nil {
		a.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "scheduled task deleted"})
}

// respondError maps the shared error taxonomy onto HTTP statuses.
func (a *API) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrInvalidURL),
		errors.Is(err, shared.ErrInvalidSchedule):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrNotFound),
		errors.Is(err, shared.ErrPlaylistNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrAPIRequest):
		a.logger.Error("upstream request failed", "err", err)
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		a.logger.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
