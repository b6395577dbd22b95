package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/chatlens/internal/logger"
)

// Watcher runs the scheduled ingestion and maintenance jobs with gocron.
type Watcher struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	deps      TaskDeps
	mu        sync.Mutex
	running   bool
}

// New creates a watcher with a directory-scan job on the configured
// interval and a maintenance job on the configured cron schedule.
func New(deps TaskDeps) (*Watcher, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	log := deps.Logger.With("component", "watcher")

	s, err := gocron.NewScheduler(gocron.WithLogger(logger.NewGocronLogger(deps.Logger)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Watcher{
		scheduler: s,
		logger:    log,
		deps:      deps,
	}, nil
}

// Start registers the jobs and starts the scheduler's internal ticking.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return errors.New("watcher is already running")
	}

	cfg := w.deps.Config.Watcher

	if err := w.addJob("scan",
		gocron.DurationJob(cfg.ScanInterval),
		newScanTask(w.deps)); err != nil {
		return err
	}

	if cfg.MaintenanceSchedule != "" {
		if err := w.addJob("sql_maintenance",
			gocron.CronJob(cfg.MaintenanceSchedule, false),
			newMaintenanceTask(w.deps)); err != nil {
			return err
		}
	}

	w.scheduler.Start()
	w.running = true
	w.logger.Info("Watcher started", "dir", cfg.Dir, "scan_interval", cfg.ScanInterval)
	return nil
}

func (w *Watcher) addJob(name string, definition gocron.JobDefinition, taskFunc ScheduledTaskFunc) error {
	_, err := w.scheduler.NewJob(
		definition,
		gocron.NewTask(
			func(ctx context.Context, name string) {
				w.logger.Debug("Running scheduled task", "task_name", name)
				startTime := time.Now()
				if taskErr := taskFunc(ctx); taskErr != nil {
					w.logger.Error("Scheduled task failed", "task_name", name, "error", taskErr)
				}
				w.logger.Debug("Finished scheduled task", "task_name", name, "duration", time.Since(startTime))
			},
			context.Background(),
			name,
		),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule task %s: %w", name, err)
	}
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	err := w.scheduler.Shutdown()
	if err != nil {
		w.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		w.logger.Info("Watcher stopped gracefully")
	}

	w.running = false
	return err
}

// Run starts the watcher and blocks until the context is cancelled,
// then shuts the scheduler down.
func (w *Watcher) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := w.Start(); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}

		<-gCtx.Done()
		w.logger.Info("Shutdown signal received, stopping watcher...")

		if err := w.Stop(); err != nil {
			w.logger.Error("Error stopping watcher", "error", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
