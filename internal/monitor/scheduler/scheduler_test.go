package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsInvalidSpec(t *testing.T) {
	_, err := New("not a cron spec", func(context.Context) error { return nil }, slog.Default())
	assert.Error(t, err)
}

func TestScheduler_FiresJob(t *testing.T) {
	var runs atomic.Int32
	s, err := New("@every 50ms", func(context.Context) error {
		runs.Add(1)
		return nil
	}, slog.Default())
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, 3*time.Second, 10*time.Millisecond)
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	var concurrent atomic.Int32
	var maxConcurrent atomic.Int32

	s, err := New("@every 20ms", func(context.Context) error {
		n := concurrent.Add(1)
		defer concurrent.Add(-1)
		if n > maxConcurrent.Load() {
			maxConcurrent.Store(n)
		}
		time.Sleep(100 * time.Millisecond)
		return nil
	}, slog.Default())
	require.NoError(t, err)

	s.Start()
	time.Sleep(400 * time.Millisecond)
	s.Stop()

	assert.Equal(t, int32(1), maxConcurrent.Load(), "ticks during a run must be skipped, not stacked")
}

func TestScheduler_StopWaitsForInFlightRun(t *testing.T) {
	var finished atomic.Bool

	s, err := New("@every 20ms", func(context.Context) error {
		time.Sleep(80 * time.Millisecond)
		finished.Store(true)
		return nil
	}, slog.Default())
	require.NoError(t, err)

	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	assert.True(t, finished.Load(), "Stop returns only after the in-flight run completes")
}
