package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/ytsnap/internal/shared"
)

// playlistItem builds one /playlistItems entry with the given video id and title.
func playlistItem(videoID, title string) map[string]any {
	return map[string]any{
		"snippet": map[string]any{
			"title": title,
			"resourceId": map[string]any{
				"videoId": videoID,
			},
		},
	}
}

func metadataResponse(title string) map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{
				"id": "PL123",
				"snippet": map[string]any{
					"title":       title,
					"description": "A test playlist",
					"publishedAt": "2024-03-01T10:00:00Z",
					"thumbnails": map[string]any{
						"high": map[string]any{"url": "https://img.example/high.jpg"},
					},
				},
			},
		},
	}
}

func TestYouTubeService(t *testing.T) {
	t.Run("NewYouTubeService", func(t *testing.T) {
		t.Run("creates service with default URL", func(t *testing.T) {
			if svc := NewYouTubeService("", "key", nil, 0); svc == nil {
				t.Fatal("expected service to be created")
			} else if svc.baseURL != defaultYTBaseURL {
				t.Errorf("expected baseURL to be %s, got %s", defaultYTBaseURL, svc.baseURL)
			}
		})

		t.Run("creates service with custom URL", func(t *testing.T) {
			customURL := "http://localhost:9000"
			if svc := NewYouTubeService(customURL, "key", nil, 0); svc.baseURL != customURL {
				t.Errorf("expected baseURL to be %s, got %s", customURL, svc.baseURL)
			}
		})
	})

	t.Run("Name", func(t *testing.T) {
		if svc := NewYouTubeService("", "key", nil, 0); svc.Name() != "YouTube" {
			t.Errorf("expected name to be 'YouTube', got %s", svc.Name())
		}
	})

	t.Run("GetPlaylistData", func(t *testing.T) {
		t.Run("fetches metadata and pages items", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("key") != "test-key" {
					t.Errorf("expected api key on request to %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")

				switch r.URL.Path {
				case "/playlists":
					json.NewEncoder(w).Encode(metadataResponse("My Mix"))
				case "/playlistItems":
					if r.URL.Query().Get("maxResults") != itemsPageSize {
						t.Errorf("expected maxResults %s, got %s", itemsPageSize, r.URL.Query().Get("maxResults"))
					}
					if r.URL.Query().Get("pageToken") == "" {
						json.NewEncoder(w).Encode(map[string]any{
							"items": []map[string]any{
								playlistItem("vid-a", "First"),
								playlistItem("vid-b", "Second"),
							},
							"nextPageToken": "page-2",
						})
					} else {
						json.NewEncoder(w).Encode(map[string]any{
							"items": []map[string]any{
								playlistItem("vid-c", "Third"),
							},
						})
					}
				default:
					t.Errorf("unexpected path %s", r.URL.Path)
				}
			}))
			defer server.Close()

			svc := NewYouTubeService(server.URL, "test-key", nil, 1000)
			data, err := svc.GetPlaylistData(context.Background(), "PL123")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if data == nil {
				t.Fatal("expected playlist data")
			}

			if data.Title != "My Mix" {
				t.Errorf("expected title 'My Mix', got %s", data.Title)
			}
			if data.ThumbnailURL != "https://img.example/high.jpg" {
				t.Errorf("expected high thumbnail, got %s", data.ThumbnailURL)
			}
			if data.PublishedAt == nil {
				t.Error("expected published timestamp")
			}
			if data.VideoCount != 3 || len(data.Videos) != 3 {
				t.Fatalf("expected 3 videos, got count=%d len=%d", data.VideoCount, len(data.Videos))
			}
			for i, v := range data.Videos {
				if v.Position != i+1 {
					t.Errorf("expected position %d, got %d", i+1, v.Position)
				}
			}
			if data.Videos[2].YouTubeVideoID != "vid-c" {
				t.Errorf("expected vid-c last, got %s", data.Videos[2].YouTubeVideoID)
			}
		})

		t.Run("filters placeholders without gapping positions", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				switch r.URL.Path {
				case "/playlists":
					json.NewEncoder(w).Encode(metadataResponse("Filtered"))
				case "/playlistItems":
					json.NewEncoder(w).Encode(map[string]any{
						"items": []map[string]any{
							playlistItem("vid-a", "Keep me"),
							playlistItem("vid-x", "Private video"),
							playlistItem("vid-y", "Deleted video"),
							playlistItem("vid-b", "Keep me too"),
						},
					})
				}
			}))
			defer server.Close()

			svc := NewYouTubeService(server.URL, "k", nil, 1000)
			data, err := svc.GetPlaylistData(context.Background(), "PL123")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(data.Videos) != 2 {
				t.Fatalf("expected 2 videos after filtering, got %d", len(data.Videos))
			}
			if data.Videos[0].Position != 1 || data.Videos[1].Position != 2 {
				t.Errorf("expected dense positions 1,2 got %d,%d", data.Videos[0].Position, data.Videos[1].Position)
			}
			if data.Videos[1].YouTubeVideoID != "vid-b" {
				t.Errorf("expected vid-b second, got %s", data.Videos[1].YouTubeVideoID)
			}
		})

		t.Run("returns nil result when playlist does not exist", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
			}))
			defer server.Close()

			svc := NewYouTubeService(server.URL, "k", nil, 1000)
			data, err := svc.GetPlaylistData(context.Background(), "PLgone")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if data != nil {
				t.Errorf("expected nil data for missing playlist, got %+v", data)
			}
		})

		t.Run("surfaces quota errors as API request failures", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"code": 403, "message": "quotaExceeded"},
				})
			}))
			defer server.Close()

			svc := NewYouTubeService(server.URL, "k", nil, 1000)
			_, err := svc.GetPlaylistData(context.Background(), "PL123")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("fails on a mid-pagination error without partial data", func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				switch r.URL.Path {
				case "/playlists":
					json.NewEncoder(w).Encode(metadataResponse("Flaky"))
				case "/playlistItems":
					calls++
					if calls == 1 {
						json.NewEncoder(w).Encode(map[string]any{
							"items":         []map[string]any{playlistItem("vid-a", "First")},
							"nextPageToken": "page-2",
						})
						return
					}
					w.WriteHeader(http.StatusInternalServerError)
				}
			}))
			defer server.Close()

			svc := NewYouTubeService(server.URL, "k", nil, 1000)
			data, err := svc.GetPlaylistData(context.Background(), "PL123")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if data != nil {
				t.Error("expected no partial data on failure")
			}
		})
	})
}
