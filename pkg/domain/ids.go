// Package domain holds typed identifiers and enumerated domain values.
// Construct them via the Parse* functions at trust boundaries; direct casting
// bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "mentorlab/pkg/domain-errors"
)

// Typed IDs prevent cross-type assignment at compile time. A UserID can never
// be passed where an EventID is expected.
type (
	// UserID identifies a platform user (mentor, mentee, or admin).
	UserID uuid.UUID

	// EventID identifies a stored audit event.
	EventID uuid.UUID

	// MonitoredUserID identifies one monitoring episode for a user.
	MonitoredUserID uuid.UUID
)

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs.
func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be nil", kind)
	}
	return u, nil
}

// ParseUserID constructs a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParseEventID constructs an EventID from external input.
func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s, "event id")
	return EventID(u), err
}

// ParseMonitoredUserID constructs a MonitoredUserID from external input.
func ParseMonitoredUserID(s string) (MonitoredUserID, error) {
	u, err := parseUUID(s, "monitored user id")
	return MonitoredUserID(u), err
}

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewEventID returns a fresh random EventID.
func NewEventID() EventID { return EventID(uuid.New()) }

// NewMonitoredUserID returns a fresh random MonitoredUserID.
func NewMonitoredUserID() MonitoredUserID { return MonitoredUserID(uuid.New()) }

func (id UserID) String() string          { return uuid.UUID(id).String() }
func (id EventID) String() string         { return uuid.UUID(id).String() }
func (id MonitoredUserID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id MonitoredUserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
