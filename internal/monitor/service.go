package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mentorlab/internal/users"
	id "mentorlab/pkg/domain"
	dErrors "mentorlab/pkg/domain-errors"
	"mentorlab/pkg/platform/sentinel"
)

// Service is the registry surface handlers talk to. It wraps the store with
// coded-error translation and enriches reads with directory identity.
type Service struct {
	store     Store
	directory users.Directory
	logger    *slog.Logger
	clock     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock injects the time source. Tests pin it; production uses time.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// NewService constructs the registry service.
func NewService(store Store, directory users.Directory, opts ...Option) *Service {
	s := &Service{
		store:     store,
		directory: directory,
		logger:    slog.Default(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAll returns every monitoring record, enriched.
func (s *Service) ListAll(ctx context.Context) ([]EnrichedMonitoredUser, error) {
	records, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list monitored users")
	}
	return s.enrichAll(ctx, records), nil
}

// ListActive returns active monitoring records, enriched.
func (s *Service) ListActive(ctx context.Context) ([]EnrichedMonitoredUser, error) {
	records, err := s.store.GetActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list active monitored users")
	}
	return s.enrichAll(ctx, records), nil
}

// Get returns one record, enriched.
func (s *Service) Get(ctx context.Context, recordID id.MonitoredUserID) (EnrichedMonitoredUser, error) {
	record, err := s.store.GetByID(ctx, recordID)
	if err != nil {
		return EnrichedMonitoredUser{}, mapStoreError(err, "monitored user")
	}
	return s.enrich(ctx, record), nil
}

// Resolve closes an active monitoring record. Resolving a missing record is a
// not-found error; resolving twice is a conflict.
func (s *Service) Resolve(ctx context.Context, recordID id.MonitoredUserID, resolvedBy id.UserID, notes string) (EnrichedMonitoredUser, error) {
	if resolvedBy.IsNil() {
		return EnrichedMonitoredUser{}, dErrors.New(dErrors.CodeUnauthorized, "resolver identity required")
	}

	record, err := s.store.Resolve(ctx, recordID, resolvedBy, notes, s.clock().UTC())
	if err != nil {
		return EnrichedMonitoredUser{}, mapStoreError(err, "monitored user")
	}

	s.logger.InfoContext(ctx, "monitoring record resolved",
		"record_id", record.ID.String(),
		"user_id", record.UserID.String(),
		"resolved_by", resolvedBy.String(),
	)
	return s.enrich(ctx, record), nil
}

// UpdatePatch is an administrative field patch. Nil fields are left as stored.
type UpdatePatch struct {
	Reason          *string
	ResolutionNotes *string
}

// Update applies an administrative patch to a record.
func (s *Service) Update(ctx context.Context, recordID id.MonitoredUserID, patch UpdatePatch) (EnrichedMonitoredUser, error) {
	record, err := s.store.GetByID(ctx, recordID)
	if err != nil {
		return EnrichedMonitoredUser{}, mapStoreError(err, "monitored user")
	}

	if patch.Reason != nil {
		record.Reason = *patch.Reason
	}
	if patch.ResolutionNotes != nil {
		record.ResolutionNotes = *patch.ResolutionNotes
	}

	updated, err := s.store.Update(ctx, record)
	if err != nil {
		return EnrichedMonitoredUser{}, mapStoreError(err, "monitored user")
	}
	return s.enrich(ctx, updated), nil
}

func (s *Service) enrichAll(ctx context.Context, records []MonitoredUser) []EnrichedMonitoredUser {
	out := make([]EnrichedMonitoredUser, 0, len(records))
	for _, record := range records {
		out = append(out, s.enrich(ctx, record))
	}
	return out
}

// enrich attaches directory identity. Lookup failures degrade to bare records;
// monitoring data must stay readable when the directory is down.
func (s *Service) enrich(ctx context.Context, record MonitoredUser) EnrichedMonitoredUser {
	enriched := EnrichedMonitoredUser{MonitoredUser: record}

	user, err := s.directory.FindByID(ctx, record.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "directory lookup failed, returning bare record",
			"user_id", record.UserID.String(),
			"error", err,
		)
	} else {
		enriched.Email = user.Email
		enriched.Role = user.Role
		enriched.FullName = user.FirstName + " " + user.LastName
	}

	if !record.ResolvedBy.IsNil() {
		if resolver, err := s.directory.FindByID(ctx, record.ResolvedBy); err == nil {
			enriched.ResolvedByEmail = resolver.Email
		}
	}
	return enriched
}

func mapStoreError(err error, subject string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, subject+" not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeConflict, subject+" already resolved")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, subject+" already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "store operation failed")
	}
}
