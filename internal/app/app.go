// Package app wires the web console: configuration, logging, the websocket
// hub and the pipeline behind the HTTP surface.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"aolcli/internal/config"
	"aolcli/internal/infrastructure"
	"aolcli/internal/services"
	transporthttp "aolcli/internal/transport/http"
	"aolcli/internal/websocket"
)

// App is the assembled web application.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	hub    *websocket.Hub
	server *http.Server
}

// New loads configuration, prepares the directory tree and assembles the
// server. Log lines reach both the console and any connected browser.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to prepare directories: %w", err)
	}

	hub := websocket.NewHub(nil)
	logger := infrastructure.NewLogger(cfg.Logging, paths.LogsDir,
		websocket.NewLogHandler(hub, slog.LevelInfo))

	pipeline := services.NewPipeline(logger, paths, cfg.Pipeline)
	handler := transporthttp.NewHandler(pipeline, hub, cfg.WebSocket, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{cfg: cfg, logger: logger, hub: hub, server: server}, nil
}

// Run serves until the process receives SIGINT or SIGTERM, then shuts down
// gracefully within the configured timeout.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("web console listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	a.hub.Stop()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// Logger exposes the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }
