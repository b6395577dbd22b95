// Package watcher implements watch mode: a gocron-backed scheduler that
// periodically scans a directory for new export files, runs them through
// the ingestion engine, and performs database maintenance.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/edgard/chatlens/internal/analysis"
	"github.com/edgard/chatlens/internal/config"
	"github.com/edgard/chatlens/internal/database"
	"github.com/edgard/chatlens/internal/engine"
	"github.com/edgard/chatlens/internal/ingest"
)

// ScheduledTaskFunc is the standard signature for scheduled tasks. The
// context provided by the scheduler must be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// TaskDeps contains the dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Engine *engine.Engine
	Config *config.Config
}

// newScanTask builds the directory-scan task: every run it lists the
// watch directory, ingests files not yet present in the store, analyzes
// them, and persists both artifacts. Already-seen sources are skipped by
// name.
func newScanTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "scan")
	cfg := deps.Config.Watcher
	platform := ingest.Platform(cfg.Platform)

	return func(ctx context.Context) error {
		entries, err := os.ReadDir(cfg.Dir)
		if err != nil {
			return fmt.Errorf("failed to read watch directory: %w", err)
		}

		ingested := 0
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			name := entry.Name()
			seen, err := deps.Store.HasSource(ctx, name)
			if err != nil {
				return err
			}
			if seen {
				continue
			}

			if err := ingestFile(ctx, deps, filepath.Join(cfg.Dir, name), name, platform); err != nil {
				log.ErrorContext(ctx, "Failed to ingest file", "file", name, "error", err)
				continue
			}
			ingested++
		}

		if ingested > 0 {
			log.InfoContext(ctx, "Scan finished", "ingested", ingested)
		}
		return nil
	}
}

func ingestFile(ctx context.Context, deps TaskDeps, path, name string, platform ingest.Platform) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	res := deps.Engine.Process(string(raw), platform)
	resultID, err := deps.Store.SaveResult(ctx, res.Platform, name, res)
	if err != nil {
		return err
	}

	data, err := analysis.Analyze(ctx, res.Messages, deps.Config.Ingest.TopK)
	if err != nil {
		// Two-party analytics are undefined for this conversation;
		// the partial aggregate is still worth keeping.
		deps.Logger.WarnContext(ctx, "Overview unavailable", "file", name, "error", err)
	}
	return deps.Store.SaveAnalysis(ctx, resultID, data)
}

// newMaintenanceTask builds the scheduled store maintenance: retention
// pruning followed by VACUUM and ANALYZE.
func newMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")
	retention := deps.Config.Watcher.RetentionDays

	return func(ctx context.Context) error {
		startTime := time.Now()

		if retention > 0 {
			cutoff := time.Now().AddDate(0, 0, -retention)
			if _, err := deps.Store.DeleteResultsBefore(ctx, cutoff); err != nil {
				return fmt.Errorf("retention pruning failed: %w", err)
			}
		}

		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "SQL maintenance failed", "error", err, "duration", time.Since(startTime))
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "SQL maintenance completed", "duration", time.Since(startTime))
		return nil
	}
}
