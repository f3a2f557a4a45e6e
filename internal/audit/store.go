package audit

import (
	"context"
	"time"

	id "mentorlab/pkg/domain"
)

// Store is the append-only system of record for audit events. All query
// methods return events in descending OccurredAt order.
type Store interface {
	// Append persists the event, assigning an ID when the caller left it
	// zero. OccurredAt is stored as given, never overwritten with
	// wall-clock time.
	Append(ctx context.Context, event Event) (Event, error)

	// QueryByTimeRange returns events with OccurredAt in [start, end].
	// The aggregator issues exactly one of these per window per run, so
	// ranges spanning 24 hours must be efficient.
	QueryByTimeRange(ctx context.Context, start, end time.Time, limit int) ([]Event, error)

	// QueryByActor returns the actor's most recent events.
	QueryByActor(ctx context.Context, actorID id.UserID, limit int) ([]Event, error)

	// QueryByEntity returns the most recent events touching one entity.
	QueryByEntity(ctx context.Context, entityType id.EntityType, entityID string, limit int) ([]Event, error)
}

// Sink is a secondary, best-effort destination for recorded events (e.g. a
// Kafka topic feeding a SIEM). Sink failures are logged and never retried.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
