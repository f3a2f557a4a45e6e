package aggregator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentorlab/internal/audit"
	auditmem "mentorlab/internal/audit/store/memory"
	"mentorlab/internal/monitor/aggregator"
	monitormem "mentorlab/internal/monitor/store/memory"
	id "mentorlab/pkg/domain"
)

var anchor = time.Date(2026, 5, 12, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return anchor }

func newAggregator(events aggregator.EventSource, registry aggregator.Registry) *aggregator.Aggregator {
	return aggregator.New(events, registry,
		aggregator.Config{HourThreshold: 100, DayThreshold: 1000},
		aggregator.WithClock(fixedClock),
	)
}

// seedEvents writes n events for the user, spread across the given duration
// ending just before the anchor.
func seedEvents(t *testing.T, store *auditmem.InMemoryStore, userID id.UserID, n int, spread time.Duration) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		offset := spread * time.Duration(i) / time.Duration(n)
		_, err := store.Append(ctx, audit.Event{
			ActorID:       userID,
			Action:        id.ActionRead,
			EntityType:    id.EntityResource,
			EntityID:      "r-1",
			SourceAddress: "198.51.100.7",
			ClientAgent:   "unknown",
			OccurredAt:    anchor.Add(-time.Minute - offset),
		})
		require.NoError(t, err)
	}
}

func TestRun_FlagsUserOverHourlyThreshold(t *testing.T) {
	events := auditmem.NewInMemoryStore()
	registry := monitormem.NewInMemoryStore()
	userID := id.NewUserID()

	// 150 operations within the last hour.
	seedEvents(t, events, userID, 150, 30*time.Minute)

	agg := newAggregator(events, registry)
	require.NoError(t, agg.Run(context.Background()))

	active, err := registry.GetActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1, "one active record despite both passes seeing the events")

	record := active[0]
	assert.Equal(t, userID, record.UserID)
	assert.Equal(t, 150, record.OperationCount)
	assert.Equal(t, id.PeriodLastHour, record.TimePeriod)
	assert.Equal(t, "Exceeded hourly threshold: 150 operations in the last hour (limit 100)", record.Reason)
	assert.True(t, record.IsActive)
}

func TestRun_WindowsAreIndependent(t *testing.T) {
	events := auditmem.NewInMemoryStore()
	registry := monitormem.NewInMemoryStore()
	userID := id.NewUserID()

	// 150 in the last hour exceeds the hourly limit but not the daily one.
	seedEvents(t, events, userID, 150, 30*time.Minute)

	agg := newAggregator(events, registry)
	require.NoError(t, agg.Run(context.Background()))

	active, err := registry.GetActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, id.PeriodLastHour, active[0].TimePeriod,
		"150 events trip the hourly window, not the daily one")
}

func TestRun_FlagsUserOverDailyThresholdOnly(t *testing.T) {
	events := auditmem.NewInMemoryStore()
	registry := monitormem.NewInMemoryStore()
	userID := id.NewUserID()

	// 1200 operations spread over 20 hours; no single hour exceeds 100.
	seedEvents(t, events, userID, 1200, 20*time.Hour)

	agg := newAggregator(events, registry)
	require.NoError(t, agg.Run(context.Background()))

	active, err := registry.GetActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)

	record := active[0]
	assert.Equal(t, id.PeriodLast24, record.TimePeriod)
	assert.Equal(t, 1200, record.OperationCount)
	assert.Equal(t, "Exceeded daily threshold: 1200 operations in the last 24 hours (limit 1000)", record.Reason)
}

func TestRun_BelowThresholdIsNoOp(t *testing.T) {
	events := auditmem.NewInMemoryStore()
	registry := monitormem.NewInMemoryStore()

	seedEvents(t, events, id.NewUserID(), 99, 30*time.Minute)

	agg := newAggregator(events, registry)
	require.NoError(t, agg.Run(context.Background()))

	all, err := registry.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRun_ExactlyAtThresholdIsNoOp(t *testing.T) {
	events := auditmem.NewInMemoryStore()
	registry := monitormem.NewInMemoryStore()

	// Flagging requires strictly more than the threshold.
	seedEvents(t, events, id.NewUserID(), 100, 30*time.Minute)

	agg := newAggregator(events, registry)
	require.NoError(t, agg.Run(context.Background()))

	all, err := registry.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRun_TwiceDoesNotDuplicateFlag(t *testing.T) {
	events := auditmem.NewInMemoryStore()
	registry := monitormem.NewInMemoryStore()
	userID := id.NewUserID()

	seedEvents(t, events, userID, 150, 30*time.Minute)

	agg := newAggregator(events, registry)
	require.NoError(t, agg.Run(context.Background()))
	require.NoError(t, agg.Run(context.Background()))

	all, err := registry.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1, "an actively monitored user is never flagged again")
}

func TestRun_AfterResolutionCreatesNewRecord(t *testing.T) {
	events := auditmem.NewInMemoryStore()
	registry := monitormem.NewInMemoryStore()
	userID := id.NewUserID()
	ctx := context.Background()

	seedEvents(t, events, userID, 150, 30*time.Minute)

	agg := newAggregator(events, registry)
	require.NoError(t, agg.Run(ctx))

	active, err := registry.GetActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	_, err = registry.Resolve(ctx, active[0].ID, id.NewUserID(), "reviewed", anchor)
	require.NoError(t, err)

	// Activity continues past resolution; the next run opens a new episode.
	require.NoError(t, agg.Run(ctx))

	all, err := registry.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err = registry.GetActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestRun_MultipleUsersIndependentCounts(t *testing.T) {
	events := auditmem.NewInMemoryStore()
	registry := monitormem.NewInMemoryStore()
	heavy := id.NewUserID()
	light := id.NewUserID()

	seedEvents(t, events, heavy, 150, 30*time.Minute)
	seedEvents(t, events, light, 20, 30*time.Minute)

	agg := newAggregator(events, registry)
	require.NoError(t, agg.Run(context.Background()))

	active, err := registry.GetActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, heavy, active[0].UserID)
}

// flakySource fails the first query and serves from the store afterwards.
type flakySource struct {
	store    *auditmem.InMemoryStore
	failures int
}

func (f *flakySource) QueryByTimeRange(ctx context.Context, start, end time.Time, limit int) ([]audit.Event, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("audit store unavailable")
	}
	return f.store.QueryByTimeRange(ctx, start, end, limit)
}

func TestRun_PassFailureDoesNotAbortOtherPass(t *testing.T) {
	events := auditmem.NewInMemoryStore()
	registry := monitormem.NewInMemoryStore()
	userID := id.NewUserID()

	// Over the daily threshold so the surviving pass has something to flag.
	seedEvents(t, events, userID, 1200, 20*time.Hour)

	source := &flakySource{store: events, failures: 1}
	agg := aggregator.New(source, registry,
		aggregator.Config{HourThreshold: 100, DayThreshold: 1000},
		aggregator.WithClock(fixedClock),
	)

	err := agg.Run(context.Background())
	require.Error(t, err, "the failed hourly pass is reported")
	assert.Contains(t, err.Error(), "hourly pass")

	active, getErr := registry.GetActive(context.Background())
	require.NoError(t, getErr)
	require.Len(t, active, 1, "the daily pass still ran")
	assert.Equal(t, id.PeriodLast24, active[0].TimePeriod)
}

func TestNew_DefaultsThresholds(t *testing.T) {
	events := auditmem.NewInMemoryStore()
	registry := monitormem.NewInMemoryStore()
	userID := id.NewUserID()

	// 101 events in the last hour exceed the default hourly limit of 100.
	seedEvents(t, events, userID, 101, 30*time.Minute)

	agg := aggregator.New(events, registry, aggregator.Config{}, aggregator.WithClock(fixedClock))
	require.NoError(t, agg.Run(context.Background()))

	active, err := registry.GetActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, userID, active[0].UserID)
}
