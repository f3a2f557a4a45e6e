// Package audit records every authenticated user action as an immutable
// event. Recording is fire-and-forget: the triggering operation never waits
// on, and never observes, the outcome of the audit write.
package audit

import (
	"time"

	id "mentorlab/pkg/domain"
)

// UnknownMetadata is the placeholder for source address and client agent when
// the request context carries none.
const UnknownMetadata = "unknown"

// Event is one recorded action. Events are immutable once stored; the store
// exposes no update or delete surface.
type Event struct {
	ID      id.EventID
	ActorID id.UserID

	Action     id.Action
	EntityType id.EntityType
	// EntityID is the affected entity. It may hold an actor id when the
	// operation addresses a collection rather than one record.
	EntityID string

	// Details is a human-diagnostic description; nothing downstream parses it.
	Details string

	SourceAddress string
	ClientAgent   string

	// OccurredAt is the authoritative ordering and windowing key. It is
	// caller-supplied and preserved by the store, which keeps backdated
	// simulation events usable.
	OccurredAt time.Time
}
