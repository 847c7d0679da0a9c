// Package worker runs the background purge loop that removes expired records, expired reveal and
// bearer tokens, and audit entries past the retention window.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Task is one purge job. Run returns the number of rows removed.
type Task struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

// Config holds purge worker configuration.
type Config struct {
	Interval time.Duration
}

// PurgeWorker runs every task once per interval.
type PurgeWorker struct {
	config Config
	tasks  []Task
	logger *slog.Logger
}

// NewPurgeWorker creates a PurgeWorker.
func NewPurgeWorker(config Config, logger *slog.Logger, tasks ...Task) *PurgeWorker {
	return &PurgeWorker{
		config: config,
		tasks:  tasks,
		logger: logger,
	}
}

// Start runs a pass immediately and then one per interval until ctx is cancelled. Pass failures are
// logged and never stop the loop.
func (w *PurgeWorker) Start(ctx context.Context) error {
	if w.config.Interval <= 0 {
		return fmt.Errorf("invalid purge interval %s", w.config.Interval)
	}

	w.logger.Info("starting purge worker",
		slog.Duration("interval", w.config.Interval),
		slog.Int("tasks", len(w.tasks)),
	)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("purge pass failed", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			w.logger.Info("stopping purge worker")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce runs all tasks concurrently and returns the rows removed per task name. A failing task
// does not cancel the others; their errors are joined.
func (w *PurgeWorker) RunOnce(ctx context.Context) (map[string]int64, error) {
	var (
		mu      sync.Mutex
		removed = make(map[string]int64, len(w.tasks))
		errs    []error
		g       errgroup.Group
	)

	for _, task := range w.tasks {
		g.Go(func() error {
			start := time.Now()
			count, err := task.Run(ctx)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", task.Name, err))
				return nil
			}
			removed[task.Name] = count

			if count > 0 {
				w.logger.Info("purged",
					slog.String("task", task.Name),
					slog.Int64("count", count),
					slog.Duration("duration", time.Since(start)),
				)
			}
			return nil
		})
	}

	_ = g.Wait()

	return removed, errors.Join(errs...)
}
