package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/ytsnap/internal/repositories"
	"github.com/desertthunder/ytsnap/internal/scheduler"
	"github.com/desertthunder/ytsnap/internal/server"
	"github.com/desertthunder/ytsnap/internal/shared"
	"github.com/desertthunder/ytsnap/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API and, when enabled, the capture scheduler, until
// interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	if config.Server.AuthToken == "" {
		return fmt.Errorf("%w: server.auth_token must be set to serve the API", shared.ErrInvalidConfig)
	}

	host := config.Server.Host
	if flagHost := cmd.String("host"); flagHost != "" {
		host = flagHost
	}
	port := config.Server.Port
	if flagPort := cmd.Int("port"); flagPort != 0 {
		port = flagPort
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshots := repositories.NewSnapshotRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	engine := tasks.NewSnapshotEngine(r.source, snapshots)
	registry := scheduler.NewRegistry(taskRepo, engine, r.logger)
	taskService := scheduler.NewTaskService(taskRepo, registry, r.logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if config.Scheduler.Enabled {
		if err := registry.Init(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer registry.Stop()
	} else {
		r.logger.Info("scheduler disabled, tasks will not run")
	}

	owner := config.Server.Owner
	if owner == "" {
		owner = "default"
	}
	verifier := server.StaticVerifier{Token: config.Server.AuthToken, UserID: owner}

	api := server.NewAPI(engine, snapshots, taskService, r.logger)
	router := server.NewRouter(api, verifier, r.logger)

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := server.NewServer(addr, router, r.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	r.logger.Info("server listening", "addr", addr, "scheduler", config.Scheduler.Enabled)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}
