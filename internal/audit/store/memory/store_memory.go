// Package memory holds the in-memory audit log store used by tests and
// development runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"mentorlab/internal/audit"
	id "mentorlab/pkg/domain"
)

// InMemoryStore keeps events in a slice. Queries sort on demand because
// backdated appends make insertion order meaningless.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) (audit.Event, error) {
	if event.ID.IsNil() {
		event.ID = id.NewEventID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return event, nil
}

func (s *InMemoryStore) QueryByTimeRange(_ context.Context, start, end time.Time, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(limit, func(e audit.Event) bool {
		return !e.OccurredAt.Before(start) && !e.OccurredAt.After(end)
	}), nil
}

func (s *InMemoryStore) QueryByActor(_ context.Context, actorID id.UserID, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(limit, func(e audit.Event) bool {
		return e.ActorID == actorID
	}), nil
}

func (s *InMemoryStore) QueryByEntity(_ context.Context, entityType id.EntityType, entityID string, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(limit, func(e audit.Event) bool {
		return e.EntityType == entityType && e.EntityID == entityID
	}), nil
}

// collect filters, sorts descending by OccurredAt, and truncates. Callers
// hold at least the read lock.
func (s *InMemoryStore) collect(limit int, match func(audit.Event) bool) []audit.Event {
	var out []audit.Event
	for _, e := range s.events {
		if match(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
