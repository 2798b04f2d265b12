// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing capture history:
//  1. [PlaylistListView] : Browse captured playlists
//  2. [SnapshotListView] : Pick a base and a target snapshot from one playlist's history
//  3. [DiffView] : Display the comparison between the two picks
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// The diff itself is computed locally from the two selected snapshots, so no
// network access happens after the history is loaded.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
