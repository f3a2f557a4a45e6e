// Package aggregator scans the audit log on a schedule and flags users whose
// operation count exceeds the configured thresholds. Each run makes two
// independent passes, hourly then daily; a user can be flagged by either
// window but never holds more than one active monitoring record.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mentorlab/internal/audit"
	"mentorlab/internal/monitor"
	"mentorlab/internal/platform/metrics"
	id "mentorlab/pkg/domain"
)

const (
	DefaultHourThreshold = 100
	DefaultDayThreshold  = 1000

	// queryTimeout bounds each store call so one slow query cannot stall the
	// whole run.
	queryTimeout = 30 * time.Second
)

// Config holds the flagging thresholds. A count must strictly exceed the
// threshold to flag; hitting it exactly does not.
type Config struct {
	HourThreshold int
	DayThreshold  int
}

// EventSource is the read side of the audit log the aggregator consumes.
type EventSource interface {
	QueryByTimeRange(ctx context.Context, start, end time.Time, limit int) ([]audit.Event, error)
}

// Registry is the write side of the monitored-user store the aggregator
// feeds.
type Registry interface {
	IsMonitored(ctx context.Context, userID id.UserID) (bool, error)
	Add(ctx context.Context, record monitor.MonitoredUser) (monitor.MonitoredUser, error)
}

// Aggregator runs the windowed threshold passes.
type Aggregator struct {
	events   EventSource
	registry Registry
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	clock    func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) { a.logger = logger }
}

// WithMetrics wires the aggregator counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// WithClock injects the time source used to anchor windows.
func WithClock(clock func() time.Time) Option {
	return func(a *Aggregator) { a.clock = clock }
}

// New constructs an Aggregator. Non-positive thresholds fall back to the
// defaults.
func New(events EventSource, registry Registry, cfg Config, opts ...Option) *Aggregator {
	if cfg.HourThreshold <= 0 {
		cfg.HourThreshold = DefaultHourThreshold
	}
	if cfg.DayThreshold <= 0 {
		cfg.DayThreshold = DefaultDayThreshold
	}

	a := &Aggregator{
		events:   events,
		registry: registry,
		cfg:      cfg,
		logger:   slog.Default(),
		tracer:   otel.Tracer("mentorlab/aggregator"),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// pass describes one window sweep.
type pass struct {
	period    id.TimePeriod
	window    time.Duration
	threshold int
	label     string
}

// Run executes the hourly pass then the daily pass. The passes are
// independent: a failure in one is logged and does not stop the other. The
// joined error is returned for the manual-trigger path; the scheduler ignores
// it.
func (a *Aggregator) Run(ctx context.Context) error {
	ctx, span := a.tracer.Start(ctx, "aggregator.run")
	defer span.End()

	passes := []pass{
		{period: id.PeriodLastHour, window: time.Hour, threshold: a.cfg.HourThreshold, label: "hourly"},
		{period: id.PeriodLast24, window: 24 * time.Hour, threshold: a.cfg.DayThreshold, label: "daily"},
	}

	var errs []error
	for _, p := range passes {
		if err := a.runPass(ctx, p); err != nil {
			a.logger.ErrorContext(ctx, "aggregator pass failed",
				"window", p.label,
				"error", err,
			)
			if a.metrics != nil {
				a.metrics.AggregatorFailures.WithLabelValues(p.label).Inc()
			}
			errs = append(errs, fmt.Errorf("%s pass: %w", p.label, err))
		}
	}

	if a.metrics != nil {
		a.metrics.AggregatorRuns.Inc()
	}
	return errors.Join(errs...)
}

func (a *Aggregator) runPass(ctx context.Context, p pass) error {
	ctx, span := a.tracer.Start(ctx, "aggregator.pass",
		trace.WithAttributes(
			attribute.String("window", p.label),
			attribute.Int("threshold", p.threshold),
		),
	)
	defer span.End()

	now := a.clock().UTC()

	qctx, cancel := context.WithTimeout(ctx, queryTimeout)
	events, err := a.events.QueryByTimeRange(qctx, now.Add(-p.window), now, 0)
	cancel()
	if err != nil {
		return fmt.Errorf("query audit events: %w", err)
	}

	if a.metrics != nil {
		a.metrics.EventsScanned.WithLabelValues(p.label).Add(float64(len(events)))
	}
	span.SetAttributes(attribute.Int("events", len(events)))

	counts := make(map[id.UserID]int)
	for _, e := range events {
		counts[e.ActorID]++
	}

	flagged := 0
	for userID, count := range counts {
		if count <= p.threshold {
			continue
		}
		added, err := a.flag(ctx, userID, count, p, now)
		if err != nil {
			return err
		}
		if added {
			flagged++
		}
	}

	if a.metrics != nil && flagged > 0 {
		a.metrics.UsersFlagged.WithLabelValues(p.label).Add(float64(flagged))
	}
	a.logger.InfoContext(ctx, "aggregator pass complete",
		"window", p.label,
		"events", len(events),
		"actors", len(counts),
		"flagged", flagged,
	)
	return nil
}

// flag creates a monitoring record unless the user already holds an active
// one. The check and the insert are separate store calls; passes run
// sequentially within a run and runs never overlap, so the gap is not
// observable under the scheduler.
func (a *Aggregator) flag(ctx context.Context, userID id.UserID, count int, p pass, now time.Time) (bool, error) {
	cctx, cancel := context.WithTimeout(ctx, queryTimeout)
	monitored, err := a.registry.IsMonitored(cctx, userID)
	cancel()
	if err != nil {
		return false, fmt.Errorf("check monitored state for %s: %w", userID, err)
	}
	if monitored {
		return false, nil
	}

	record := monitor.MonitoredUser{
		UserID:         userID,
		Reason:         reason(p, count),
		OperationCount: count,
		TimePeriod:     p.period,
		IsActive:       true,
		CreatedAt:      now,
	}

	actx, cancel := context.WithTimeout(ctx, queryTimeout)
	added, err := a.registry.Add(actx, record)
	cancel()
	if err != nil {
		return false, fmt.Errorf("add monitoring record for %s: %w", userID, err)
	}

	a.logger.WarnContext(ctx, "user flagged for excessive activity",
		"record_id", added.ID.String(),
		"user_id", userID.String(),
		"window", p.label,
		"operations", count,
		"threshold", p.threshold,
	)
	return true, nil
}

func reason(p pass, count int) string {
	if p.period == id.PeriodLastHour {
		return fmt.Sprintf("Exceeded hourly threshold: %d operations in the last hour (limit %d)", count, p.threshold)
	}
	return fmt.Sprintf("Exceeded daily threshold: %d operations in the last 24 hours (limit %d)", count, p.threshold)
}
