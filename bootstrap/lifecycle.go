// ABOUTME: This file is the application lifecycle: build, start, wait, drain.
// ABOUTME: Shutdown runs on SIGINT/SIGTERM or on a critical error from the emitter.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"aggregator/config"
	"aggregator/utils/logger"
)

// Run is the main application entry point. It initializes all dependencies,
// starts the ops server and the feed timers, then waits for a shutdown
// signal or a critical error.
func Run(ctx context.Context) error {
	// Optional .env for local development; absence is not an error.
	_ = godotenv.Load()

	log := logger.New(logger.LoadConfigFromEnv())

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The worker name distinguishes coexisting workers on the status
	// channel.
	workerName := fmt.Sprintf("aggregator-%s", uuid.NewString()[:8])

	log.Info("starting aggregation worker",
		"worker", workerName,
		"redis", cfg.Redis.URL,
		"min_refresh", cfg.Scheduler.MinRefresh)

	deps, cleanup, err := BuildDependencies(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build dependencies: %w", err)
	}
	defer cleanup()

	httpServer := NewHTTPServer(deps)
	StartHTTPServer(httpServer, cfg.Server.Port, log)

	started := deps.Scheduler.Init(ctx)
	log.Info("feed timers started", "feeds", started)

	if err := deps.Consumer.Start(ctx); err != nil {
		deps.Scheduler.Destroy()
		return fmt.Errorf("failed to start command consumer: %w", err)
	}

	log.Info("aggregation worker started", "worker", workerName)

	waitForShutdown(deps, log)

	log.Info("shutting down aggregation worker", "worker", workerName)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	deps.Emitter.Status(shutdownCtx, workerName, "shutting-down")
	deps.Scheduler.Destroy()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("error shutting down ops server", "error", err)
	}

	log.Info("aggregation worker stopped", "worker", workerName)

	return nil
}

// waitForShutdown blocks until a process signal arrives or the emitter
// reports a critical error.
func waitForShutdown(deps *Dependencies, log *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("received shutdown signal", "signal", sig.String())
	case kind := <-deps.Emitter.Fatal():
		log.Info("critical error, beginning graceful shutdown", "kind", kind)
	}
}
