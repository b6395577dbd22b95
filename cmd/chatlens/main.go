// Package main contains the entrypoint for the chatlens application.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/edgard/chatlens/internal/analysis"
	"github.com/edgard/chatlens/internal/config"
	"github.com/edgard/chatlens/internal/database"
	"github.com/edgard/chatlens/internal/engine"
	"github.com/edgard/chatlens/internal/ingest"
	"github.com/edgard/chatlens/internal/logger"
	"github.com/edgard/chatlens/internal/watcher"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all application components (config, logger, db, engine),
// performs either a one-shot ingestion of -input or starts watch mode, and
// returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	inputPath := flag.String("input", "", "Chat export file to ingest")
	platformHint := flag.String("platform", "auto", "Platform hint: whatsapp, instagram, discord, telegram, snapchat, auto")
	watch := flag.Bool("watch", false, "Watch the configured directory for new export files")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format == "json")
	log.Info("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	db, err := database.NewDB(cfg.Database.Path, database.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	eng := engine.New(log, engine.Options{
		DayFirst:            cfg.Ingest.DayFirst,
		DedupWindow:         cfg.Ingest.DedupWindow,
		SimilarityThreshold: cfg.Ingest.SimilarityThreshold,
	})

	if *watch {
		w, err := watcher.New(watcher.TaskDeps{
			Logger: log,
			Store:  store,
			Engine: eng,
			Config: cfg,
		})
		if err != nil {
			log.Error("Failed to create watcher", "error", err)
			return 1
		}

		log.Info("Starting watch mode...")
		if runErr := w.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
			log.Error("Watcher stopped due to error", "error", runErr)
			return 1
		}
		log.Info("Watcher stopped gracefully.")
		return 0
	}

	if *inputPath == "" {
		log.Error("No input file given; pass -input or -watch")
		return 1
	}

	if err := ingestOnce(ctx, log, store, eng, cfg, *inputPath, ingest.Platform(*platformHint)); err != nil {
		log.Error("Ingestion failed", "input", *inputPath, "error", err)
		return 1
	}
	return 0
}

// ingestOnce processes a single export file, persists the result and its
// analysis, and prints a JSON summary to stdout.
func ingestOnce(ctx context.Context, log *slog.Logger, store database.Store, eng *engine.Engine, cfg *config.Config, path string, hint ingest.Platform) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	res := eng.Process(string(raw), hint)

	resultID, err := store.SaveResult(ctx, res.Platform, filepath.Base(path), res)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	data, analysisErr := analysis.Analyze(ctx, res.Messages, cfg.Ingest.TopK)
	if analysisErr != nil {
		log.Warn("Overview unavailable", "error", analysisErr)
	}
	if err := store.SaveAnalysis(ctx, resultID, data); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	summary := struct {
		ResultID string               `json:"result_id"`
		Stats    ingest.Stats         `json:"stats"`
		Warnings []ingest.WarningCode `json:"warnings,omitempty"`
		Analysis analysis.Data        `json:"analysis"`
	}{
		ResultID: resultID,
		Stats:    res.Stats,
		Warnings: res.Warnings,
		Analysis: data,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	log.Info("Ingestion complete", "result_id", resultID, "messages", len(res.Messages))
	return nil
}
