// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "user",
		Aliases: []string{"u"},
		Usage:   "User id owning snapshots and tasks",
	}
}

// setupCommand handles initialization of the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml, initialize database and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// serveCommand runs the HTTP API with the capture scheduler.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the snapshot API server and capture scheduler",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to bind (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// captureCommand captures a single snapshot immediately.
func captureCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "capture",
		Usage: "Capture a snapshot of a playlist right now",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "playlist",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			userFlag(),
			&cli.StringFlag{
				Name:  "name",
				Usage: "Override the stored playlist title",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the stored snapshot as JSON",
			},
		},
		Action: r.Capture,
	}
}

// snapshotsCommand handles stored snapshot operations.
func snapshotsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "snapshots",
		Aliases: []string{"snap"},
		Usage:   "Inspect, export, import and compare stored snapshots",
		Commands: []*cli.Command{
			{
				Name:   "overview",
				Usage:  "List tracked playlists with snapshot counts",
				Flags:  []cli.Flag{configFlag(), userFlag(), &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action: r.SnapshotsOverview,
			},
			{
				Name:  "list",
				Usage: "List snapshots of one playlist, newest first",
				Flags: []cli.Flag{
					configFlag(),
					userFlag(),
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "YouTube playlist ID",
						Required: true,
					},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.SnapshotsList,
			},
			{
				Name:  "show",
				Usage: "Print one snapshot including its video list",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					configFlag(),
					userFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.SnapshotsShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a stored snapshot",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag(), userFlag()},
				Action: r.SnapshotsDelete,
			},
			{
				Name:  "export",
				Usage: "Export a snapshot to json, csv, markdown or text",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					configFlag(),
					userFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown or text",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file or directory path",
					},
				},
				Action: r.SnapshotsExport,
			},
			{
				Name:  "import",
				Usage: "Import a snapshot from a JSON export file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags:  []cli.Flag{configFlag(), userFlag()},
				Action: r.SnapshotsImport,
			},
			{
				Name:  "diff",
				Usage: "Compare two snapshots of the same playlist",
				Flags: []cli.Flag{
					configFlag(),
					userFlag(),
					&cli.StringFlag{
						Name:     "base",
						Usage:    "Base (older) snapshot ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "target",
						Usage:    "Target (newer) snapshot ID",
						Required: true,
					},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "markdown", Usage: "Output a markdown report"},
				},
				Action: r.SnapshotsDiff,
			},
		},
	}
}

// tasksCommand handles scheduled capture task operations.
func tasksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "Manage scheduled capture tasks",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List scheduled tasks, newest first",
				Flags:  []cli.Flag{configFlag(), userFlag(), &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}},
				Action: r.TasksList,
			},
			{
				Name:  "create",
				Usage: "Schedule recurring captures of a playlist",
				Flags: []cli.Flag{
					configFlag(),
					userFlag(),
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Playlist URL or ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name for the task",
					},
					&cli.StringFlag{
						Name:    "schedule",
						Aliases: []string{"s"},
						Usage:   "Cron expression (minute hour dom month dow)",
					},
					&cli.StringFlag{
						Name:  "every",
						Usage: "Picker frequency: daily, weekly or monthly",
					},
					&cli.StringFlag{
						Name:  "at",
						Usage: "Picker time of day, HH:MM (24h)",
						Value: "00:00",
					},
					&cli.IntFlag{
						Name:  "weekday",
						Usage: "Picker weekday for weekly tasks (0=Sunday)",
					},
					&cli.IntFlag{
						Name:  "day-of-month",
						Usage: "Picker day for monthly tasks (1-31)",
						Value: 1,
					},
				},
				Action: r.TasksCreate,
			},
			{
				Name:  "update",
				Usage: "Change a task's name, schedule or status",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					configFlag(),
					userFlag(),
					&cli.StringFlag{Name: "name", Usage: "New display name"},
					&cli.StringFlag{Name: "schedule", Aliases: []string{"s"}, Usage: "New cron expression"},
					&cli.StringFlag{Name: "status", Usage: "New status: active, paused, completed or error"},
				},
				Action: r.TasksUpdate,
			},
			{
				Name:  "pause",
				Usage: "Pause a task without deleting it",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag(), userFlag()},
				Action: r.TasksPause,
			},
			{
				Name:  "resume",
				Usage: "Resume a paused task",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag(), userFlag()},
				Action: r.TasksResume,
			},
			{
				Name:  "delete",
				Usage: "Delete a task and stop its captures",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag(), userFlag()},
				Action: r.TasksDelete,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for browsing snapshot history.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing and diffing snapshots",
		Flags:   []cli.Flag{configFlag(), userFlag()},
		Action:  r.TUI,
	}
}
