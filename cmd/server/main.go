package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/penyaskito/dashboard-initiative/internal/app"
	"github.com/penyaskito/dashboard-initiative/internal/config"
	"github.com/penyaskito/dashboard-initiative/internal/core"
	"github.com/penyaskito/dashboard-initiative/internal/logging"
	"github.com/penyaskito/dashboard-initiative/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()
	a, err := app.Open(ctx, cfg, slog.Default())
	if err != nil {
		slog.Error("failed to open stores", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	for _, def := range core.All() {
		slog.Debug("content kind registered", "kind", def.Kind, "entity_type", def.EntityType)
	}

	server := web.NewServer(a.Service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let a running import or delete finish so provenance stays complete
		if status := a.Service.RunStatus(); status.Active {
			slog.Info("waiting for run to complete", "run_id", status.RunID)
			if err := a.Service.WaitForRuns(shutdownCtx); err != nil {
				slog.Warn("run did not complete in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		a.Close()
		os.Exit(1)
	}
	slog.Info("server stopped")
}
