// Package scheduler drives the activity aggregator on a cron schedule.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// RunFunc is the job the scheduler fires; the aggregator's Run. The returned
// error is logged, never fatal: the next tick gets a fresh attempt.
type RunFunc func(ctx context.Context) error

// Scheduler owns the cron loop. SkipIfStillRunning guarantees a tick that
// arrives while the previous run is in flight is skipped rather than stacked.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New builds a scheduler firing run per the cron spec (standard five-field
// syntax, e.g. "0 * * * *" for the top of every hour).
func New(spec string, run RunFunc, logger *slog.Logger) (*Scheduler, error) {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))

	_, err := c.AddFunc(spec, func() {
		start := time.Now()
		if err := run(context.Background()); err != nil {
			logger.Error("scheduled aggregation finished with errors",
				"error", err,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return
		}
		logger.Info("scheduled aggregation complete",
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
	if err != nil {
		return nil, err
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins firing ticks.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts new ticks and waits for any in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
