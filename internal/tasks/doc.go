// Package tasks orchestrates playlist captures and snapshot comparison.
//
// # Core Operations
//
// The [CaptureEngine] interface defines two operations:
//
//  1. [CaptureEngine.Capture] : produce and persist one snapshot
//     - Resolves the playlist id (URL parsing when needed)
//     - Delegates fetching to a [services.PlaylistSource]
//     - Stamps the capture timestamp at persistence time
//     - Writes exactly one snapshot row per successful call, none on failure
//
//  2. [CaptureEngine.Diff] : classify the differences between two snapshots
//     - Builds an id → video index per snapshot
//     - Partitions videos into added / removed / reordered / unchanged
//     - Pure and deterministic: no I/O, no side effects
//
// # Progress Reporting
//
// Capture emits [ProgressUpdate] values over an optional channel using
// select-with-default, so reporting never blocks execution. The CLI and TUI
// layers render these; passing a nil channel disables reporting entirely.
//
// # Implementation
//
// [SnapshotEngine] implements [CaptureEngine] with dependencies on:
//   - [services.PlaylistSource] : the external playlist API client
//   - [SnapshotStore] : the persistence layer (repositories.SnapshotRepository)
package tasks
