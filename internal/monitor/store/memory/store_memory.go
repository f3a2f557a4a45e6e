// Package memory holds the in-memory monitored-user store used by tests and
// development runs. It mirrors the production store's behavior exactly,
// including the absence of any duplicate-active constraint; that gate lives in
// the aggregator.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"mentorlab/internal/monitor"
	id "mentorlab/pkg/domain"
	"mentorlab/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.MonitoredUserID]monitor.MonitoredUser
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.MonitoredUserID]monitor.MonitoredUser)}
}

func (s *InMemoryStore) Add(_ context.Context, record monitor.MonitoredUser) (monitor.MonitoredUser, error) {
	if record.ID.IsNil() {
		record.ID = id.NewMonitoredUserID()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = record.CreatedAt

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	return record, nil
}

func (s *InMemoryStore) IsMonitored(_ context.Context, userID id.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.UserID == userID && r.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) GetActive(_ context.Context) ([]monitor.MonitoredUser, error) {
	return s.collect(func(r monitor.MonitoredUser) bool { return r.IsActive }), nil
}

func (s *InMemoryStore) GetAll(_ context.Context) ([]monitor.MonitoredUser, error) {
	return s.collect(func(monitor.MonitoredUser) bool { return true }), nil
}

func (s *InMemoryStore) GetByID(_ context.Context, recordID id.MonitoredUserID) (monitor.MonitoredUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[recordID]
	if !ok {
		return monitor.MonitoredUser{}, sentinel.ErrNotFound
	}
	return record, nil
}

func (s *InMemoryStore) Resolve(_ context.Context, recordID id.MonitoredUserID, resolvedBy id.UserID, notes string, at time.Time) (monitor.MonitoredUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[recordID]
	if !ok {
		return monitor.MonitoredUser{}, sentinel.ErrNotFound
	}
	if !record.IsActive {
		return monitor.MonitoredUser{}, sentinel.ErrInvalidState
	}

	resolvedAt := at
	record.IsActive = false
	record.ResolvedAt = &resolvedAt
	record.ResolvedBy = resolvedBy
	record.ResolutionNotes = notes
	record.UpdatedAt = at

	s.records[recordID] = record
	return record, nil
}

func (s *InMemoryStore) Update(_ context.Context, record monitor.MonitoredUser) (monitor.MonitoredUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ID]; !ok {
		return monitor.MonitoredUser{}, sentinel.ErrNotFound
	}
	record.UpdatedAt = time.Now().UTC()
	s.records[record.ID] = record
	return record, nil
}

// collect filters and sorts newest first. Ties on CreatedAt keep map order,
// which only concurrency tests can observe.
func (s *InMemoryStore) collect(match func(monitor.MonitoredUser) bool) []monitor.MonitoredUser {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []monitor.MonitoredUser
	for _, r := range s.records {
		if match(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
