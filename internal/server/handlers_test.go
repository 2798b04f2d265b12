package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/ytsnap/internal/models"
	"github.com/desertthunder/ytsnap/internal/repositories"
	"github.com/desertthunder/ytsnap/internal/scheduler"
	"github.com/desertthunder/ytsnap/internal/services"
	"github.com/desertthunder/ytsnap/internal/shared"
	"github.com/desertthunder/ytsnap/internal/tasks"
	tu "github.com/desertthunder/ytsnap/internal/testing"
)

const (
	testToken = "test-token"
	testUser  = "user-1"
)

// newTestHandler wires the full stack over an in-memory database and the
// given playlist source.
func newTestHandler(t *testing.T, source services.PlaylistSource) http.Handler {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	logger := shared.NewLogger(io.Discard)
	snapshots := repositories.NewSnapshotRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	engine := tasks.NewSnapshotEngine(source, snapshots)
	registry := scheduler.NewRegistry(taskRepo, engine, logger)
	service := scheduler.NewTaskService(taskRepo, registry, logger)

	api := NewAPI(engine, snapshots, service, logger)
	return NewRouter(api, StaticVerifier{Token: testToken, UserID: testUser}, logger)
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

// captureSnapshot drives the capture endpoint and returns the stored snapshot.
func captureSnapshot(t *testing.T, handler http.Handler, url string) models.Snapshot {
	t.Helper()
	rec := doRequest(t, handler, http.MethodPost, "/api/playlists/capture", map[string]string{"playlistUrl": url}, testToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("capture failed with status %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[models.Snapshot](t, rec)
}

func TestAuth(t *testing.T) {
	handler := newTestHandler(t, &tu.MockPlaylistSource{})

	t.Run("welcome route is public", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/", nil, "")
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/playlists/overview", nil, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("wrong token is rejected", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/playlists/overview", nil, "wrong")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}

func TestCaptureEndpoint(t *testing.T) {
	t.Run("captures and returns the snapshot", func(t *testing.T) {
		handler := newTestHandler(t, &tu.MockPlaylistSource{Data: tu.SamplePlaylistData("PL123", 3)})

		rec := doRequest(t, handler, http.MethodPost, "/api/playlists/capture",
			map[string]string{"playlistUrl": "https://www.youtube.com/playlist?list=PL123"}, testToken)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		snapshot := decodeBody[models.Snapshot](t, rec)
		if snapshot.PlaylistID != "PL123" || snapshot.VideoCount != 3 {
			t.Errorf("unexpected snapshot %+v", snapshot)
		}
	})

	t.Run("requires a playlist URL", func(t *testing.T) {
		handler := newTestHandler(t, &tu.MockPlaylistSource{})

		rec := doRequest(t, handler, http.MethodPost, "/api/playlists/capture", map[string]string{}, testToken)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects an unresolvable URL", func(t *testing.T) {
		handler := newTestHandler(t, &tu.MockPlaylistSource{})

		rec := doRequest(t, handler, http.MethodPost, "/api/playlists/capture",
			map[string]string{"playlistUrl": "https://www.youtube.com/watch?v=abc"}, testToken)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("missing playlists map to 404", func(t *testing.T) {
		handler := newTestHandler(t, &tu.MockPlaylistSource{NotFound: true})

		rec := doRequest(t, handler, http.MethodPost, "/api/playlists/capture",
			map[string]string{"playlistUrl": "PLgone"}, testToken)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestSnapshotEndpoints(t *testing.T) {
	t.Run("overview is empty before any capture", func(t *testing.T) {
		handler := newTestHandler(t, &tu.MockPlaylistSource{})

		rec := doRequest(t, handler, http.MethodGet, "/api/playlists/overview", nil, testToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := decodeBody[[]repositories.PlaylistOverview](t, rec); len(got) != 0 {
			t.Errorf("expected empty overview, got %+v", got)
		}
	})

	t.Run("overview lists captured playlists", func(t *testing.T) {
		handler := newTestHandler(t, &tu.MockPlaylistSource{Data: tu.SamplePlaylistData("PL123", 2)})
		captureSnapshot(t, handler, "PL123")
		captureSnapshot(t, handler, "PL123")

		rec := doRequest(t, handler, http.MethodGet, "/api/playlists/overview", nil, testToken)
		overview := decodeBody[[]repositories.PlaylistOverview](t, rec)
		if len(overview) != 1 || overview[0].SnapshotCount != 2 {
			t.Errorf("unexpected overview %+v", overview)
		}
	})

	t.Run("history returns 404 for an uncaptured playlist", func(t *testing.T) {
		handler := newTestHandler(t, &tu.MockPlaylistSource{})

		rec := doRequest(t, handler, http.MethodGet, "/api/playlists/PL404/snapshots", nil, testToken)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("history lists snapshots newest first", func(t *testing.T) {
		handler := newTestHandler(t, &tu.MockPlaylistSource{Data: tu.SamplePlaylistData("PL123", 1)})
		captureSnapshot(t, handler, "PL123")
		captureSnapshot(t, handler, "PL123")

		rec := doRequest(t, handler, http.MethodGet, "/api/playlists/PL123/snapshots", nil, testToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := decodeBody[[]models.Snapshot](t, rec); len(got) != 2 {
			t.Errorf("expected 2 snapshots, got %d", len(got))
		}
	})

	t.Run("get and delete round-trip", func(t *testing.T) {
		handler := newTestHandler(t, &tu.MockPlaylistSource{Data: tu.SamplePlaylistData("PL123", 1)})
		snapshot := captureSnapshot(t, handler, "PL123")

		rec := doRequest(t, handler, http.MethodGet, "/api/snapshots/"+snapshot.ID, nil, testToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		rec = doRequest(t, handler, http.MethodDelete, "/api/snapshots/"+snapshot.ID, nil, testToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		rec = doRequest(t, handler, http.MethodGet, "/api/snapshots/"+snapshot.ID, nil, testToken)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 after delete, got %d", rec.Code)
		}
	})

	t.Run("export sets an attachment disposition", func(t *testing.T) {
		handler := newTestHandler(t, &tu.MockPlaylistSource{Data: tu.SamplePlaylistData("PL123", 1)})
		snapshot := captureSnapshot(t, handler, "PL123")

		rec := doRequest(t, handler, http.MethodGet, "/api/snapshots/"+snapshot.ID+"/export", nil, testToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		disposition := rec.Header().Get("Content-Disposition")
		if !strings.HasPrefix(disposition, "attachment; filename=playlist_snapshot_PL123_") {
			t.Errorf("unexpected disposition %q", disposition)
		}
	})

	t.Run("import renumbers positions densely", func(t *testing.T) {
		handler := newTestHandler(t, &tu.MockPlaylistSource{})

		payload := map[string]any{
			"youtubePlaylistId": "PL777",
			"title":             "Imported",
			"videos": []map[string]any{
				{"youtubeVideoId": "b", "title": "B", "position": 10},
				{"youtubeVideoId": "a", "title": "A", "position": 2},
			},
		}

		rec := doRequest(t, handler, http.MethodPost, "/api/snapshots/import", payload, testToken)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		snapshot := decodeBody[models.Snapshot](t, rec)
		if snapshot.VideoCount != 2 {
			t.Fatalf("expected 2 videos, got %d", snapshot.VideoCount)
		}
		if snapshot.Videos[0].YouTubeVideoID != "a" || snapshot.Videos[0].Position != 1 {
			t.Errorf("expected a at position 1, got %+v", snapshot.Videos[0])
		}
		if snapshot.Videos[1].YouTubeVideoID != "b" || snapshot.Videos[1].Position != 2 {
			t.Errorf("expected b at position 2, got %+v", snapshot.Videos[1])
		}
	})

	t.Run("import rejects malformed payloads", func(t *testing.T) {
		handler := newTestHandler(t, &tu.MockPlaylistSource{})

		bad := []map[string]any{
			{"title": "no playlist id", "videos": []map[string]any{{"youtubeVideoId": "a", "title": "A", "position": 1}}},
			{"youtubePlaylistId": "PL1", "title": "no videos"},
			{"youtubePlaylistId": "PL1", "title": "bad video", "videos": []map[string]any{{"title": "missing id", "position": 1}}},
		}
		for _, payload := range bad {
			rec := doRequest(t, handler, http.MethodPost, "/api/snapshots/import", payload, testToken)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400 for %v, got %d", payload, rec.Code)
			}
		}
	})

	t.Run("diff compares two snapshots", func(t *testing.T) {
		source := &tu.MockPlaylistSource{Data: tu.SamplePlaylistData("PL123", 2)}
		handler := newTestHandler(t, source)

		base := captureSnapshot(t, handler, "PL123")
		source.Data = tu.SamplePlaylistData("PL123", 3)
		target := captureSnapshot(t, handler, "PL123")

		rec := doRequest(t, handler, http.MethodGet, "/api/snapshots/"+base.ID+"/diff/"+target.ID, nil, testToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		result := decodeBody[struct {
			BaseID   string              `json:"baseSnapshotId"`
			TargetID string              `json:"targetSnapshotId"`
			Diff     *tasks.SnapshotDiff `json:"diff"`
		}](t, rec)

		if result.BaseID != base.ID || result.TargetID != target.ID {
			t.Errorf("unexpected ids in %+v", result)
		}
		if len(result.Diff.Added) != 1 || len(result.Diff.Unchanged) != 2 {
			t.Errorf("unexpected diff %+v", result.Diff)
		}
	})

	t.Run("diff reports a missing snapshot", func(t *testing.T) {
		handler := newTestHandler(t, &tu.MockPlaylistSource{Data: tu.SamplePlaylistData("PL123", 1)})
		base := captureSnapshot(t, handler, "PL123")

		rec := doRequest(t, handler, http.MethodGet, "/api/snapshots/"+base.ID+"/diff/missing", nil, testToken)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestTaskEndpoints(t *testing.T) {
	t.Run("create, list, update, delete lifecycle", func(t *testing.T) {
		handler := newTestHandler(t, &tu.MockPlaylistSource{})

		rec := doRequest(t, handler, http.MethodPost, "/api/scheduled-tasks",
			map[string]string{"youtubePlaylistId": "PL123", "playlistName": "Mine", "cronSchedule": "0 3 * * *"}, testToken)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		task := decodeBody[models.ScheduledTask](t, rec)
		if task.Status != models.TaskActive {
			t.Errorf("expected active task, got %s", task.Status)
		}

		rec = doRequest(t, handler, http.MethodGet, "/api/scheduled-tasks", nil, testToken)
		if got := decodeBody[[]models.ScheduledTask](t, rec); len(got) != 1 {
			t.Fatalf("expected 1 task, got %d", len(got))
		}

		rec = doRequest(t, handler, http.MethodPut, "/api/scheduled-tasks/"+task.ID,
			map[string]string{"status": "paused"}, testToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := decodeBody[models.ScheduledTask](t, rec); got.Status != models.TaskPaused {
			t.Errorf("expected paused, got %s", got.Status)
		}

		rec = doRequest(t, handler, http.MethodDelete, "/api/scheduled-tasks/"+task.ID, nil, testToken)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		rec = doRequest(t, handler, http.MethodGet, "/api/scheduled-tasks/"+task.ID, nil, testToken)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 after delete, got %d", rec.Code)
		}
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		handler := newTestHandler(t, &tu.MockPlaylistSource{})

		rec := doRequest(t, handler, http.MethodPost, "/api/scheduled-tasks",
			map[string]string{"playlistName": "Mine"}, testToken)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects an invalid schedule", func(t *testing.T) {
		handler := newTestHandler(t, &tu.MockPlaylistSource{})

		rec := doRequest(t, handler, http.MethodPost, "/api/scheduled-tasks",
			map[string]string{"youtubePlaylistId": "PL123", "cronSchedule": "sometimes"}, testToken)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		rec = doRequest(t, handler, http.MethodGet, "/api/scheduled-tasks", nil, testToken)
		if got := decodeBody[[]models.ScheduledTask](t, rec); len(got) != 0 {
			t.Errorf("expected no tasks persisted, got %+v", got)
		}
	})
}
