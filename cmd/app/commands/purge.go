package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/allisson/sealbox/internal/worker"
)

// RunPurge runs one purge pass over tasks and prints the rows removed per task. Counts of the tasks
// that succeeded are printed even when another task fails.
func RunPurge(
	ctx context.Context,
	logger *slog.Logger,
	writer io.Writer,
	format string,
	tasks ...worker.Task,
) error {
	logger.Info("running purge", slog.Int("tasks", len(tasks)))

	removed, runErr := worker.NewPurgeWorker(worker.Config{}, logger, tasks...).RunOnce(ctx)

	if format == "json" {
		result := map[string]any{
			"removed": removed,
			"success": runErr == nil,
		}
		if err := writeJSON(writer, result); err != nil {
			return err
		}
	} else {
		names := make([]string, 0, len(removed))
		for name := range removed {
			names = append(names, name)
		}
		slices.Sort(names)

		for _, name := range names {
			_, _ = fmt.Fprintf(writer, "%-14s %d\n", name, removed[name])
		}
	}

	if runErr != nil {
		return fmt.Errorf("purge failed: %w", runErr)
	}

	logger.Info("purge completed")
	return nil
}
