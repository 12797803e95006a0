package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"aolcli/internal/config"
	"aolcli/internal/infrastructure"
	"aolcli/internal/services"
)

func main() {
	programs := flag.String("programs", "", "comma-separated program codes to report on (defaults to all)")
	flag.Parse()

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

	if !pipeline.RunReportingFor(context.Background(), splitPrograms(*programs)) {
		os.Exit(1)
	}
}

func splitPrograms(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var programs []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			programs = append(programs, p)
		}
	}
	return programs
}
