package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/safarlabs/railsathi/internal/config"
	"github.com/safarlabs/railsathi/internal/logging"
	"github.com/safarlabs/railsathi/internal/server"
	"github.com/safarlabs/railsathi/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

// runServe starts the HTTP server and blocks until the context is
// cancelled, then shuts down gracefully within the configured timeout.
func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := session.NewStore(cfg.Session.Capacity, controllerFactory(cfg, logger), logger)
	if err != nil {
		return fmt.Errorf("building session store: %w", err)
	}

	srv, err := server.NewServer(store, logger, cfg.Server)
	if err != nil {
		return fmt.Errorf("building server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logger.Info("railsathi ready",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("version", version))

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
