// package services defines interface PlaylistSource for fetching ordered
// collections from external APIs
package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/ytsnap/internal/models"
	"github.com/desertthunder/ytsnap/internal/shared"
)

// PlaylistSource defines the interface for an external playlist provider.
type PlaylistSource interface {
	// GetPlaylistData retrieves playlist metadata and the complete ordered
	// video list, following pagination until exhausted.
	//
	// Returns (nil, nil) when the playlist does not exist upstream; a
	// non-nil error indicates a transport, quota, or parse failure and
	// never carries partial data.
	GetPlaylistData(ctx context.Context, playlistID string) (*models.PlaylistData, error)

	// Name returns the provider name (e.g., "YouTube")
	Name() string
}

// ExtractPlaylistID pulls the playlist id from a user-supplied URL via the
// `list` query parameter.
//
// Accepts a bare playlist id as-is, so callers can pass either form.
func ExtractPlaylistID(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: empty input", shared.ErrInvalidURL)
	}

	if !strings.Contains(raw, "://") && !strings.ContainsAny(raw, "/?&") {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidURL, err)
	}

	id := u.Query().Get("list")
	if id == "" {
		return "", shared.ErrInvalidURL
	}

	return id, nil
}
