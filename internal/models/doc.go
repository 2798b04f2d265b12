// Package models defines domain entities for the playlist snapshot tracker.
//
// The package contains two categories of types:
//
// 1. Value objects carried inside a snapshot:
//   - [Video] : one playlist entry with its 1-based position
//   - [PlaylistData] : normalized fetch result before persistence
//
// 2. Persistent entities, exclusively owned by a user id:
//   - [Snapshot] : an immutable, timestamped capture of a playlist's
//     ordered video list
//   - [ScheduledTask] : a recurring capture description with a five-field
//     cron expression and a [TaskStatus]
//
// Entities validate themselves via Validate before persistence. JSON tags
// follow the export/import wire format, so an exported snapshot document
// re-imports without translation.
package models
