// package formatter provides functions to export snapshots and diffs to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/ytsnap/internal/models"
	"github.com/desertthunder/ytsnap/internal/tasks"
)

// ExportToCSV converts a snapshot's video list to CSV with columns: Position, VideoID, Title
func ExportToCSV(snapshot *models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "VideoID", "Title"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, video := range snapshot.Videos {
		record := []string{
			strconv.Itoa(video.Position),
			video.YouTubeVideoID,
			video.Title,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a snapshot to Markdown format with optional cover image
func ExportToMarkdown(snapshot *models.Snapshot, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", snapshot.Title))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if snapshot.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", snapshot.Description))
	}

	buf.WriteString(fmt.Sprintf("**Videos**: %d\n", snapshot.VideoCount))
	buf.WriteString(fmt.Sprintf("**Captured**: %s\n\n", snapshot.CapturedAt.Format(time.RFC3339)))

	buf.WriteString("## Videos\n\n")
	for _, video := range snapshot.Videos {
		buf.WriteString(fmt.Sprintf("%d. %s (`%s`)\n", video.Position, video.Title, video.YouTubeVideoID))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a snapshot to plain text format
func ExportToText(snapshot *models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", snapshot.Title))
	if snapshot.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", snapshot.Description))
	}
	buf.WriteString(fmt.Sprintf("Captured: %s\n", snapshot.CapturedAt.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("Videos: %d\n\n", snapshot.VideoCount))

	for _, video := range snapshot.Videos {
		buf.WriteString(fmt.Sprintf("%d. %s\n", video.Position, video.Title))
	}

	return buf.Bytes(), nil
}

// DiffToMarkdown renders a snapshot comparison as Markdown.
func DiffToMarkdown(diff *tasks.SnapshotDiff) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Snapshot Diff\n\n")
	buf.WriteString(fmt.Sprintf("**Added**: %d · **Removed**: %d · **Reordered**: %d · **Unchanged**: %d\n\n",
		len(diff.Added), len(diff.Removed), len(diff.Reordered), len(diff.Unchanged)))

	if len(diff.Added) > 0 {
		buf.WriteString("## Added\n\n")
		for _, video := range diff.Added {
			buf.WriteString(fmt.Sprintf("- %s (`%s`) at position %d\n", video.Title, video.YouTubeVideoID, video.Position))
		}
		buf.WriteString("\n")
	}

	if len(diff.Removed) > 0 {
		buf.WriteString("## Removed\n\n")
		for _, video := range diff.Removed {
			buf.WriteString(fmt.Sprintf("- %s (`%s`) was at position %d\n", video.Title, video.YouTubeVideoID, video.Position))
		}
		buf.WriteString("\n")
	}

	if len(diff.Reordered) > 0 {
		buf.WriteString("## Reordered\n\n")
		for _, moved := range diff.Reordered {
			buf.WriteString(fmt.Sprintf("- %s (`%s`) moved %d → %d\n", moved.Video.Title, moved.Video.YouTubeVideoID, moved.FromPosition, moved.ToPosition))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// DiffToText renders a snapshot comparison as plain text.
func DiffToText(diff *tasks.SnapshotDiff) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Added: %d, Removed: %d, Reordered: %d, Unchanged: %d\n",
		len(diff.Added), len(diff.Removed), len(diff.Reordered), len(diff.Unchanged)))

	for _, video := range diff.Added {
		buf.WriteString(fmt.Sprintf("+ %s [%s] at %d\n", video.Title, video.YouTubeVideoID, video.Position))
	}
	for _, video := range diff.Removed {
		buf.WriteString(fmt.Sprintf("- %s [%s] was at %d\n", video.Title, video.YouTubeVideoID, video.Position))
	}
	for _, moved := range diff.Reordered {
		buf.WriteString(fmt.Sprintf("~ %s [%s] %d -> %d\n", moved.Video.Title, moved.Video.YouTubeVideoID, moved.FromPosition, moved.ToPosition))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of snapshot metadata (without the video list)
func ToMetadataJSON(snapshot *models.Snapshot) ([]byte, error) {
	metadata := struct {
		ID           string `json:"id"`
		PlaylistID   string `json:"youtubePlaylistId"`
		Title        string `json:"title"`
		Description  string `json:"description,omitempty"`
		ThumbnailURL string `json:"thumbnailUrl,omitempty"`
		VideoCount   int    `json:"videoCount"`
		CapturedAt   string `json:"capturedAt"`
	}{
		ID:           snapshot.ID,
		PlaylistID:   snapshot.PlaylistID,
		Title:        snapshot.Title,
		Description:  snapshot.Description,
		ThumbnailURL: snapshot.ThumbnailURL,
		VideoCount:   snapshot.VideoCount,
		CapturedAt:   snapshot.CapturedAt.Format(time.RFC3339),
	}
	return json.MarshalIndent(metadata, "", "  ")
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	VideosFile   string
	MetadataFile string
}

// WriteCSVExport exports a snapshot to CSV format with accompanying metadata JSON file.
//
// Defaults to the snapshot ID as the base filename & creates {base}_videos.csv and {base}_metadata.json
func WriteCSVExport(snapshot *models.Snapshot, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = snapshot.ID
	}

	csvData, err := ExportToCSV(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	videosFile := baseFilepath + "_videos.csv"
	if err := os.WriteFile(videosFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		VideosFile:   videosFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a snapshot to Markdown format in a dedicated directory.
//
// Directory name defaults to the snapshot ID.
// The imageURL parameter is optional - if provided, attempts to download the playlist thumbnail.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(snapshot *models.Snapshot, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = snapshot.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := fmt.Sprintf("%s/%s", outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(snapshot, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a snapshot to plain text format.
//
// Defaults to {snapshot.ID}_videos.txt as the filename.
func WriteTextExport(snapshot *models.Snapshot, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_videos.txt", snapshot.ID)
	}

	textData, err := ExportToText(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

// WriteJSONExport writes the complete snapshot, video list included, as
// pretty-printed JSON. Defaults to {snapshot.ID}.json as the filename.
func WriteJSONExport(snapshot *models.Snapshot, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s.json", snapshot.ID)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return filepath, nil
}
