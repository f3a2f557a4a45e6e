// Package monitor holds the monitored-user registry: records created when the
// activity aggregator flags an account, and the resolution lifecycle operators
// drive from the admin surface.
package monitor

import (
	"time"

	id "mentorlab/pkg/domain"
)

// MonitoredUser is one monitoring episode. A user may accumulate many resolved
// records over time but holds at most one active record.
type MonitoredUser struct {
	ID     id.MonitoredUserID
	UserID id.UserID

	// Reason is the operator-facing explanation, including the observed count
	// and the limit, e.g.
	// "Exceeded hourly threshold: 142 operations in the last hour (limit 100)".
	Reason         string
	OperationCount int
	TimePeriod     id.TimePeriod

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// Resolution fields are zero until the record is resolved.
	ResolvedAt      *time.Time
	ResolvedBy      id.UserID
	ResolutionNotes string
}

// EnrichedMonitoredUser carries directory identity alongside the record.
// Enrichment is display-only; lookups that fail leave the identity fields
// empty rather than failing the read.
type EnrichedMonitoredUser struct {
	MonitoredUser

	Email    string
	Role     id.Role
	FullName string

	ResolvedByEmail string
}
