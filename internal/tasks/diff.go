package tasks

import (
	"github.com/desertthunder/ytsnap/internal/models"
)

// ReorderedVideo records a video present in both snapshots at different
// positions.
type ReorderedVideo struct {
	Video        models.Video `json:"video"`
	FromPosition int          `json:"fromPosition"` // position in base
	ToPosition   int          `json:"toPosition"`   // position in target
}

// SnapshotDiff classifies every video of two snapshots by identity.
//
// Added, Reordered, and Unchanged partition the target's videos; Removed,
// Reordered, and Unchanged partition the base's. Diffing a snapshot against
// itself yields empty Added, Removed, and Reordered sets.
type SnapshotDiff struct {
	Added     []models.Video   `json:"added"`     // in target, not in base
	Removed   []models.Video   `json:"removed"`   // in base, not in target
	Reordered []ReorderedVideo `json:"reordered"` // in both, position changed
	Unchanged []models.Video   `json:"unchanged"` // in both, same position
}

// Diff compares two snapshots and classifies every video as added, removed,
// reordered, or unchanged.
//
// Pure and deterministic: no I/O, no side effects. A nil snapshot or nil
// video list is treated as empty. If a video id repeats within one snapshot
// the last occurrence's position is used for comparison; such input is
// unsupported and no resolution order is promised.
func (e *SnapshotEngine) Diff(base, target *models.Snapshot) *SnapshotDiff {
	return DiffSnapshots(base, target)
}

// DiffSnapshots is the engine-independent diff implementation.
func DiffSnapshots(base, target *models.Snapshot) *SnapshotDiff {
	baseVideos := snapshotVideos(base)
	targetVideos := snapshotVideos(target)

	baseIndex := indexByID(baseVideos)
	targetIndex := indexByID(targetVideos)

	diff := &SnapshotDiff{
		Added:     []models.Video{},
		Removed:   []models.Video{},
		Reordered: []ReorderedVideo{},
		Unchanged: []models.Video{},
	}

	for _, video := range targetVideos {
		baseVideo, inBase := baseIndex[video.YouTubeVideoID]
		switch {
		case !inBase:
			diff.Added = append(diff.Added, video)
		case baseVideo.Position != video.Position:
			diff.Reordered = append(diff.Reordered, ReorderedVideo{
				Video:        video,
				FromPosition: baseVideo.Position,
				ToPosition:   video.Position,
			})
		default:
			diff.Unchanged = append(diff.Unchanged, video)
		}
	}

	for _, video := range baseVideos {
		if _, inTarget := targetIndex[video.YouTubeVideoID]; !inTarget {
			diff.Removed = append(diff.Removed, video)
		}
	}

	return diff
}

// snapshotVideos returns the snapshot's video list, treating a nil snapshot
// or missing list as empty.
func snapshotVideos(s *models.Snapshot) []models.Video {
	if s == nil {
		return nil
	}
	return s.Videos
}

// indexByID builds an id → video map; a repeated id keeps its last occurrence.
func indexByID(videos []models.Video) map[string]models.Video {
	index := make(map[string]models.Video, len(videos))
	for _, v := range videos {
		index[v.YouTubeVideoID] = v
	}
	return index
}
