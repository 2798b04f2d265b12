// Package services implements clients for the external collection APIs the
// tracker captures from.
//
// # Playlist fetching
//
// [PlaylistSource] is the narrow interface the capture pipeline consumes:
// one call returns playlist metadata plus the complete ordered video list,
// with pagination handled inside the client. A playlist that does not exist
// upstream is reported as a nil result without an error, so callers can
// distinguish "gone" from a transport failure.
//
// [YouTubeService] is the production implementation over the YouTube Data
// API v3. It follows nextPageToken continuation cursors until exhausted,
// filters out "Private video" / "Deleted video" placeholders, and assigns a
// dense 1-based position counter across pages. Page requests pass through a
// [golang.org/x/time/rate.Limiter] to stay inside API quota.
//
// # URL parsing
//
// [ExtractPlaylistID] pulls the playlist id out of a user-supplied watch or
// playlist URL (the `list` query parameter). A missing parameter is a
// client-input error ([shared.ErrInvalidURL]), never a transport error.
package services
