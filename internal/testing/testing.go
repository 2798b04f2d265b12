// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/ytsnap/internal/models"
)

// MockPlaylistSource is a test double for [services.PlaylistSource].
//
// Data is returned as-is; Err wins when both are set. NotFound forces the
// nil-result contract for missing playlists.
type MockPlaylistSource struct {
	Data     *models.PlaylistData
	Err      error
	NotFound bool
	Calls    []string // playlist ids requested, in order
}

func (m *MockPlaylistSource) GetPlaylistData(ctx context.Context, playlistID string) (*models.PlaylistData, error) {
	m.Calls = append(m.Calls, playlistID)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.NotFound {
		return nil, nil
	}
	return m.Data, nil
}

func (m *MockPlaylistSource) Name() string { return "mock" }

// MockSnapshotStore records created snapshots and can fail on demand.
type MockSnapshotStore struct {
	Created []*models.Snapshot
	Err     error
}

func (m *MockSnapshotStore) Create(snapshot *models.Snapshot) error {
	if m.Err != nil {
		return m.Err
	}
	if snapshot.ID == "" {
		snapshot.ID = "mock-snapshot-id"
	}
	m.Created = append(m.Created, snapshot)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// SamplePlaylistData builds a fetch result with n videos in order.
func SamplePlaylistData(playlistID string, n int) *models.PlaylistData {
	videos := make([]models.Video, n)
	for i := range videos {
		videos[i] = models.Video{
			YouTubeVideoID: string(rune('a' + i)),
			Title:          "Video " + string(rune('A'+i)),
			Position:       i + 1,
		}
	}
	return &models.PlaylistData{
		PlaylistID: playlistID,
		Title:      "Sample Playlist",
		Videos:     videos,
		VideoCount: n,
	}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
