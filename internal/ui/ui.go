package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytsnap/internal/models"
	"github.com/desertthunder/ytsnap/internal/repositories"
	"github.com/desertthunder/ytsnap/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	SnapshotListView
	DiffView
)

// HistoryStore is the read side of the snapshot repository the browser needs.
type HistoryStore interface {
	Overview(userID string) ([]repositories.PlaylistOverview, error)
	ListByPlaylist(userID, playlistID string) ([]*models.Snapshot, error)
}

// Differ compares two snapshots. Implemented by [tasks.SnapshotEngine].
type Differ interface {
	Diff(base, target *models.Snapshot) *tasks.SnapshotDiff
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	userID       string
	store        HistoryStore
	differ       Differ
	width        int
	height       int
	playlistList list.Model
	snapshotList list.Model
	snapshots    []*models.Snapshot
	base         *models.Snapshot
	target       *models.Snapshot
	diff         *tasks.SnapshotDiff
	err          error
	help         help.Model
	keys         keyMap
}

type overviewFetchedMsg struct {
	overview []repositories.PlaylistOverview
	err      error
}

type historyFetchedMsg struct {
	snapshots []*models.Snapshot
	err       error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, userID string, store HistoryStore, differ Differ) *Model {
	return &Model{
		ctx:    ctx,
		view:   PlaylistListView,
		userID: userID,
		store:  store,
		differ: differ,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by fetching the playlist overview.
func (m *Model) Init() tea.Cmd {
	return m.fetchOverview()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistList.Width() == 0 {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.snapshotList.Width() == 0 {
			m.snapshotList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case SnapshotListView:
			return m.handleSnapshotListKeys(msg)
		case DiffView:
			return m.handleDiffKeys(msg)
		}

	case overviewFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.overview))
		for i, o := range msg.overview {
			items[i] = overviewItem{overview: o}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Captured Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case historyFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistListView
			return m, nil
		}
		m.snapshots = msg.snapshots
		m.base = nil
		m.target = nil
		m.rebuildSnapshotList()
		m.view = SnapshotListView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != DiffView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case SnapshotListView:
		return m.renderSnapshotList()
	case DiffView:
		return m.renderDiff()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.playlistList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(overviewItem); ok {
				return m, m.fetchHistory(item.overview.PlaylistID)
			}
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleSnapshotListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PlaylistListView
		return m, nil
	case "enter":
		selected := m.snapshotList.SelectedItem()
		if selected == nil {
			return m, nil
		}
		item, ok := selected.(snapshotItem)
		if !ok {
			return m, nil
		}

		// First pick is the base, second the target.
		if m.base == nil {
			m.base = item.snapshot
			m.rebuildSnapshotList()
			return m, nil
		}
		if item.snapshot.ID == m.base.ID {
			m.base = nil
			m.rebuildSnapshotList()
			return m, nil
		}

		m.target = item.snapshot
		m.diff = m.differ.Diff(m.base, m.target)
		m.view = DiffView
		return m, nil
	}

	var cmd tea.Cmd
	m.snapshotList, cmd = m.snapshotList.Update(msg)
	return m, cmd
}

func (m *Model) handleDiffKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = SnapshotListView
		m.base = nil
		m.target = nil
		m.diff = nil
		m.rebuildSnapshotList()
		return m, nil
	case "r":
		m.view = PlaylistListView
		m.base = nil
		m.target = nil
		m.diff = nil
		return m, m.fetchOverview()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case SnapshotListView:
		m.snapshotList, cmd = m.snapshotList.Update(msg)
	}
	return m, cmd
}

func (m *Model) rebuildSnapshotList() {
	items := make([]list.Item, len(m.snapshots))
	for i, snapshot := range m.snapshots {
		items[i] = snapshotItem{
			snapshot: snapshot,
			isBase:   m.base != nil && snapshot.ID == m.base.ID,
		}
	}
	m.snapshotList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.snapshotList.Title = "Snapshot History"
	if len(m.snapshots) > 0 {
		m.snapshotList.Title = fmt.Sprintf("Snapshots of '%s'", m.snapshots[0].Title)
	}
	m.snapshotList.SetSize(m.width-4, m.height-8)
}

func (m *Model) fetchOverview() tea.Cmd {
	return func() tea.Msg {
		overview, err := m.store.Overview(m.userID)
		return overviewFetchedMsg{overview: overview, err: err}
	}
}

func (m *Model) fetchHistory(playlistID string) tea.Cmd {
	return func() tea.Msg {
		snapshots, err := m.store.ListByPlaylist(m.userID, playlistID)
		return historyFetchedMsg{snapshots: snapshots, err: err}
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderSnapshotList() string {
	pickKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "pick base/target"))
	helpKeys := []key.Binding{pickKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	hint := "Pick the base snapshot."
	if m.base != nil {
		hint = fmt.Sprintf("Base: %s — pick the target.", m.base.CapturedAt.Format("2006-01-02 15:04:05"))
	}

	return fmt.Sprintf("%s\n%s\n\n%s", m.snapshotList.View(), styles.help.Render(hint), helpView)
}

func (m *Model) renderDiff() string {
	title := styles.title.Render(fmt.Sprintf("Diff: %s → %s",
		m.base.CapturedAt.Format("2006-01-02 15:04"),
		m.target.CapturedAt.Format("2006-01-02 15:04")))

	summary := fmt.Sprintf("Added: %d  Removed: %d  Reordered: %d  Unchanged: %d\n",
		len(m.diff.Added), len(m.diff.Removed), len(m.diff.Reordered), len(m.diff.Unchanged))

	var body string
	for _, video := range m.diff.Added {
		body += styles.ok.Render(fmt.Sprintf("+ %s", video.Title)) + "\n"
	}
	for _, video := range m.diff.Removed {
		body += styles.err.Render(fmt.Sprintf("- %s", video.Title)) + "\n"
	}
	for _, moved := range m.diff.Reordered {
		body += styles.warn.Render(fmt.Sprintf("~ %s (%d → %d)", moved.Video.Title, moved.FromPosition, moved.ToPosition)) + "\n"
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s\n%s", title, summary, body, helpView)
}
