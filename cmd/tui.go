package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytsnap/internal/repositories"
	"github.com/desertthunder/ytsnap/internal/shared"
	"github.com/desertthunder/ytsnap/internal/tasks"
	"github.com/desertthunder/ytsnap/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for browsing snapshot history and
// comparing captures.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/ytsnap-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	snapshots := repositories.NewSnapshotRepository(db)
	engine := tasks.NewSnapshotEngine(r.source, snapshots)

	model := ui.NewModel(ctx, r.owner(cmd), snapshots, engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
