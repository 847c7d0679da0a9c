package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedTask(name string, count int64, err error) Task {
	return Task{
		Name: name,
		Run: func(ctx context.Context) (int64, error) {
			return count, err
		},
	}
}

func TestPurgeWorker_RunOnce(t *testing.T) {
	t.Run("Success_CollectsCounts", func(t *testing.T) {
		w := NewPurgeWorker(Config{Interval: time.Minute}, discardLogger(),
			fixedTask("records", 3, nil),
			fixedTask("reveal_tokens", 0, nil),
			fixedTask("audit_logs", 12, nil),
		)

		removed, err := w.RunOnce(context.Background())

		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"records": 3, "reveal_tokens": 0, "audit_logs": 12}, removed)
	})

	t.Run("Error_OtherTasksStillRun", func(t *testing.T) {
		w := NewPurgeWorker(Config{Interval: time.Minute}, discardLogger(),
			fixedTask("records", 0, errors.New("connection reset")),
			fixedTask("auth_tokens", 5, nil),
		)

		removed, err := w.RunOnce(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "records: connection reset")
		assert.Equal(t, map[string]int64{"auth_tokens": 5}, removed)
	})

	t.Run("Success_NoTasks", func(t *testing.T) {
		w := NewPurgeWorker(Config{Interval: time.Minute}, discardLogger())

		removed, err := w.RunOnce(context.Background())

		require.NoError(t, err)
		assert.Empty(t, removed)
	})
}

func TestPurgeWorker_Start(t *testing.T) {
	t.Run("RunsUntilCancelled", func(t *testing.T) {
		var passes atomic.Int64
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		w := NewPurgeWorker(Config{Interval: 5 * time.Millisecond}, discardLogger(), Task{
			Name: "records",
			Run: func(ctx context.Context) (int64, error) {
				if passes.Add(1) >= 3 {
					cancel()
				}
				return 1, nil
			},
		})

		done := make(chan error, 1)
		go func() { done <- w.Start(ctx) }()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("worker did not stop")
		}
		assert.GreaterOrEqual(t, passes.Load(), int64(3))
	})

	t.Run("FailuresDoNotStopLoop", func(t *testing.T) {
		var passes atomic.Int64
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		w := NewPurgeWorker(Config{Interval: 5 * time.Millisecond}, discardLogger(), Task{
			Name: "audit_logs",
			Run: func(ctx context.Context) (int64, error) {
				if passes.Add(1) >= 2 {
					cancel()
				}
				return 0, errors.New("database unavailable")
			},
		})

		require.NoError(t, w.Start(ctx))
		assert.GreaterOrEqual(t, passes.Load(), int64(2))
	})

	t.Run("InvalidInterval", func(t *testing.T) {
		w := NewPurgeWorker(Config{}, discardLogger())

		assert.Error(t, w.Start(context.Background()))
	})
}
