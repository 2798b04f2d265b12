// YouTube Data API v3 [PlaylistSource] implementation
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/ytsnap/internal/models"
	"github.com/desertthunder/ytsnap/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultYTBaseURL  = "https://www.googleapis.com/youtube/v3"
	defaultRPS        = 4.0
	itemsPageSize     = "50"
	privateVideoTitle = "Private video"
	deletedVideoTitle = "Deleted video"
)

// YouTubeService implements the [PlaylistSource] interface over the YouTube
// Data API v3 using an API key.
type YouTubeService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewYouTubeService creates a new YouTube Data API service instance.
//
// rps bounds outgoing requests per second; zero or negative falls back to a
// conservative default.
func NewYouTubeService(baseURL, apiKey string, client *http.Client, rps float64) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if rps <= 0 {
		rps = defaultRPS
	}

	return &YouTubeService{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Name returns the provider name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// ytThumbnail is one rendition in a snippet's thumbnail set.
type ytThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ytPlaylistSnippet is the snippet part of a /playlists item.
type ytPlaylistSnippet struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	PublishedAt time.Time              `json:"publishedAt"`
	Thumbnails  map[string]ytThumbnail `json:"thumbnails"`
}

// ytItemSnippet is the snippet part of a /playlistItems item.
type ytItemSnippet struct {
	Title      string `json:"title"`
	Position   int64  `json:"position"`
	ResourceID struct {
		VideoID string `json:"videoId"`
	} `json:"resourceId"`
}

// doRequest issues one GET against the Data API, decoding the JSON body into
// result. The API key is appended to every request.
func (y *YouTubeService) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	params.Set("key", y.apiKey)
	apiURL := fmt.Sprintf("%s%s?%s", y.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}

	return nil
}

// GetPlaylistData retrieves playlist metadata and every video across all
// pages of /playlistItems.
//
// Returns (nil, nil) when the playlist does not exist upstream. Placeholder
// entries for private or deleted videos are dropped without consuming a
// position: the counter increments only for included videos, so positions
// are always a dense 1..N sequence.
func (y *YouTubeService) GetPlaylistData(ctx context.Context, playlistID string) (*models.PlaylistData, error) {
	var metaResp struct {
		Items []struct {
			ID      string            `json:"id"`
			Snippet ytPlaylistSnippet `json:"snippet"`
		} `json:"items"`
	}

	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", playlistID)

	if err := y.doRequest(ctx, "/playlists", params, &metaResp); err != nil {
		return nil, err
	}

	if len(metaResp.Items) == 0 {
		// Upstream answered but the playlist is gone: a null result, not an error.
		return nil, nil
	}

	snippet := metaResp.Items[0].Snippet

	data := &models.PlaylistData{
		PlaylistID:  playlistID,
		Title:       snippet.Title,
		Description: snippet.Description,
	}
	if !snippet.PublishedAt.IsZero() {
		published := snippet.PublishedAt
		data.PublishedAt = &published
	}
	if thumb, ok := snippet.Thumbnails["high"]; ok {
		data.ThumbnailURL = thumb.URL
	} else if thumb, ok := snippet.Thumbnails["default"]; ok {
		data.ThumbnailURL = thumb.URL
	}

	videos, err := y.fetchAllItems(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	data.Videos = videos
	data.VideoCount = len(videos)
	return data, nil
}

// fetchAllItems pages through /playlistItems following nextPageToken until
// exhausted, accumulating included videos in page order.
func (y *YouTubeService) fetchAllItems(ctx context.Context, playlistID string) ([]models.Video, error) {
	videos := []models.Video{}
	position := 1
	pageToken := ""

	for {
		var pageResp struct {
			Items []struct {
				Snippet ytItemSnippet `json:"snippet"`
			} `json:"items"`
			NextPageToken string `json:"nextPageToken"`
		}

		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("playlistId", playlistID)
		params.Set("maxResults", itemsPageSize)
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		if err := y.doRequest(ctx, "/playlistItems", params, &pageResp); err != nil {
			return nil, err
		}

		for _, item := range pageResp.Items {
			if item.Snippet.Title == privateVideoTitle || item.Snippet.Title == deletedVideoTitle {
				continue
			}
			videos = append(videos, models.Video{
				YouTubeVideoID: item.Snippet.ResourceID.VideoID,
				Title:          item.Snippet.Title,
				Position:       position,
			})
			position++
		}

		pageToken = pageResp.NextPageToken
		if pageToken == "" {
			return videos, nil
		}
	}
}
