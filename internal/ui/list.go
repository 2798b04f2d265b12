package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/ytsnap/internal/models"
	"github.com/desertthunder/ytsnap/internal/repositories"
)

var (
	_ list.Item = overviewItem{}
	_ list.Item = snapshotItem{}
)

// overviewItem wraps [repositories.PlaylistOverview] to implement [list.Item].
type overviewItem struct {
	overview repositories.PlaylistOverview
}

func (i overviewItem) FilterValue() string { return i.overview.Title }
func (i overviewItem) Title() string       { return i.overview.Title }
func (i overviewItem) Description() string {
	return fmt.Sprintf("%d snapshots • last captured %s",
		i.overview.SnapshotCount, i.overview.LastCapturedAt.Format("2006-01-02 15:04"))
}

// snapshotItem wraps [models.Snapshot] to implement [list.Item]. The base
// marker shows which snapshot was picked first during diff selection.
type snapshotItem struct {
	snapshot *models.Snapshot
	isBase   bool
}

func (i snapshotItem) FilterValue() string { return i.snapshot.CapturedAt.Format("2006-01-02") }
func (i snapshotItem) Title() string {
	title := i.snapshot.CapturedAt.Format("2006-01-02 15:04:05")
	if i.isBase {
		title += " (base)"
	}
	return title
}
func (i snapshotItem) Description() string {
	return fmt.Sprintf("%d videos", i.snapshot.VideoCount)
}
