package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/clock"
	"taskboard/internal/config"
	"taskboard/internal/health"
	"taskboard/internal/snapshot"
	"taskboard/internal/store"
	"taskboard/internal/task"
	"taskboard/internal/telemetry"
	"taskboard/internal/user"

	// Register store drivers so they are available via store.Open.
	_ "taskboard/internal/store/memory"
	_ "taskboard/internal/store/postgres"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := run(*configPath); err != nil {
		slog.Error("fatal error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	tp, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Warn("telemetry setup failed, continuing without OTEL export", slog.Any("error", err))
		tp = telemetry.NewNopProvider()
	}
	defer func() {
		if shutdownErr := tp.Shutdown(context.Background()); shutdownErr != nil {
			slog.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	logger := tp.Logger
	clk := clock.Real{}

	ser, err := snapshot.ForFormat(cfg.Events.SnapshotFormat)
	if err != nil {
		return fmt.Errorf("selecting snapshot serializer: %w", err)
	}

	repos, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening store (driver=%s): %w", cfg.Database.Driver, err)
	}
	defer repos.Closer.Close()

	logger.InfoContext(ctx, "store opened",
		slog.String("driver", cfg.Database.Driver),
		slog.String("snapshot_format", ser.Format()),
	)

	// The persistence services are the ports the business layer consumes.
	taskSvc := task.NewService(repos.Tasks, repos.Events, repos.Atomic, ser, clk, logger, tp.TracerProvider)
	userSvc := user.NewService(repos.Users, repos.Events, repos.Atomic, ser, clk, logger, tp.TracerProvider)

	healthHandler := health.NewHandler(clk,
		health.Check{Name: "database", Probe: repos.Ping},
		health.Check{Name: "tasks", Probe: func(ctx context.Context) error {
			_, err := taskSvc.GetAll(ctx)
			return err
		}},
		health.Check{Name: "users", Probe: func(ctx context.Context) error {
			_, err := userSvc.GetAll(ctx)
			return err
		}},
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler.Liveness)
	mux.HandleFunc("/readyz", healthHandler.Readiness)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoContext(ctx, "starting health server", slog.Int("port", cfg.Server.Port))
		if listenErr := httpServer.ListenAndServe(); listenErr != nil && listenErr != http.ErrServerClosed {
			logger.ErrorContext(ctx, "health server error", slog.Any("error", listenErr))
		}
	}()

	healthHandler.SetReady(true)
	logger.InfoContext(ctx, "taskboard is running", slog.String("version", version))

	<-ctx.Done()
	logger.Info("shutting down...")
	healthHandler.SetReady(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}
