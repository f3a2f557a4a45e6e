package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mentorlab/internal/platform/metrics"
	id "mentorlab/pkg/domain"
	"mentorlab/pkg/requestcontext"
)

const defaultBufferSize = 256

// appendTimeout bounds the detached store write. The caller's context may
// already be canceled by the time the worker picks the event up.
const appendTimeout = 10 * time.Second

// Recorder accepts events from request handlers and persists them from a
// background worker. Record never blocks and never returns an error: a full
// buffer drops the event, a store failure is logged and swallowed. At-most-once
// delivery is the contract.
type Recorder struct {
	store   Store
	sinks   []Sink
	logger  *slog.Logger
	metrics *metrics.Metrics

	inbox chan Event

	closeOnce sync.Once
	done      chan struct{}
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the structured logger for swallowed failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

// WithMetrics wires the recorder counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Recorder) { r.metrics = m }
}

// WithBufferSize sets the in-flight event channel capacity.
func WithBufferSize(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.inbox = make(chan Event, n)
		}
	}
}

// WithSinks adds secondary best-effort destinations.
func WithSinks(sinks ...Sink) Option {
	return func(r *Recorder) { r.sinks = append(r.sinks, sinks...) }
}

// NewRecorder builds a Recorder and starts its worker goroutine. Call Close
// to drain outstanding events on shutdown.
func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{
		store:  store,
		logger: slog.Default(),
		inbox:  make(chan Event, defaultBufferSize),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	go r.work()
	return r
}

// Record enqueues an audit event for the given actor. Calls without an
// authenticated actor are a silent no-op: events from unauthenticated
// contexts are never recorded.
//
// Source address, client agent, and the event time come from the request
// context (see pkg/requestcontext); missing metadata defaults to "unknown".
func (r *Recorder) Record(ctx context.Context, actorID id.UserID, action id.Action, entityType id.EntityType, entityID, details string) {
	if actorID.IsNil() {
		return
	}

	event := Event{
		ID:            id.NewEventID(),
		ActorID:       actorID,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Details:       details,
		SourceAddress: orUnknown(requestcontext.ClientIP(ctx)),
		ClientAgent:   orUnknown(requestcontext.ClientAgent(ctx)),
		OccurredAt:    requestcontext.Now(ctx),
	}

	select {
	case r.inbox <- event:
		if r.metrics != nil {
			r.metrics.AuditEventsRecorded.Inc()
		}
	default:
		// Buffer full. Dropping is the accepted cost of never blocking
		// the triggering operation.
		if r.metrics != nil {
			r.metrics.AuditEventsDropped.Inc()
		}
		r.logger.Warn("audit buffer full, event dropped",
			"actor_id", event.ActorID.String(),
			"action", event.Action.String(),
		)
	}
}

// Close stops accepting events, drains the buffer, and waits for the worker
// to finish.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.inbox)
		<-r.done
	})
}

func (r *Recorder) work() {
	defer close(r.done)

	for event := range r.inbox {
		r.persist(event)
	}
}

func (r *Recorder) persist(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	if _, err := r.store.Append(ctx, event); err != nil {
		if r.metrics != nil {
			r.metrics.AuditAppendFailures.Inc()
		}
		r.logger.Error("audit append failed, event lost",
			"error", err,
			"actor_id", event.ActorID.String(),
			"action", event.Action.String(),
		)
	}

	for _, sink := range r.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			r.logger.Warn("audit sink publish failed",
				"error", err,
				"event_id", event.ID.String(),
			)
		}
	}
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownMetadata
	}
	return s
}
