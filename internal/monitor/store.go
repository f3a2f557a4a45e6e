package monitor

import (
	"context"
	"time"

	id "mentorlab/pkg/domain"
)

// Store persists monitored-user records.
//
// Add never deduplicates; the aggregator gates on IsMonitored before adding.
// Implementations return sentinel.ErrNotFound for missing records and
// sentinel.ErrInvalidState for resolving an already-resolved record; the
// service maps both onto coded errors.
type Store interface {
	// Add inserts a new active record.
	Add(ctx context.Context, record MonitoredUser) (MonitoredUser, error)

	// IsMonitored reports whether the user has an active record.
	IsMonitored(ctx context.Context, userID id.UserID) (bool, error)

	// GetActive returns active records, most recently created first.
	GetActive(ctx context.Context) ([]MonitoredUser, error)

	// GetAll returns every record, most recently created first.
	GetAll(ctx context.Context) ([]MonitoredUser, error)

	// GetByID returns one record.
	GetByID(ctx context.Context, recordID id.MonitoredUserID) (MonitoredUser, error)

	// Resolve deactivates an active record, stamping resolver and notes.
	Resolve(ctx context.Context, recordID id.MonitoredUserID, resolvedBy id.UserID, notes string, at time.Time) (MonitoredUser, error)

	// Update applies an administrative patch and stamps UpdatedAt.
	Update(ctx context.Context, record MonitoredUser) (MonitoredUser, error)
}
