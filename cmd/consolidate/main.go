package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"aolcli/internal/config"
	"aolcli/internal/infrastructure"
	"aolcli/internal/services"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to prepare directories", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.NewLogger(cfg.Logging, paths.LogsDir)
	pipeline := services.NewPipeline(logger, paths, cfg.Pipeline)

	if !pipeline.RunConsolidation(context.Background()) {
		os.Exit(1)
	}
}
