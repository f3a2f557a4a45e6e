package handler

import (
	"net/http"
	"time"

	dErrors "mentorlab/pkg/domain-errors"

	"mentorlab/internal/audit"
)

// EventResponse is the HTTP form of one audit event.
type EventResponse struct {
	ID            string    `json:"id"`
	ActorID       string    `json:"actor_id"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Details       string    `json:"details,omitempty"`
	SourceAddress string    `json:"source_address"`
	ClientAgent   string    `json:"client_agent"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventListResponse wraps a page of events.
type EventListResponse struct {
	Events []EventResponse `json:"events"`
	Count  int             `json:"count"`
}

// FromEvents converts stored events to the HTTP response form.
func FromEvents(events []audit.Event) EventListResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventResponse{
			ID:            e.ID.String(),
			ActorID:       e.ActorID.String(),
			Action:        e.Action.String(),
			EntityType:    e.EntityType.String(),
			EntityID:      e.EntityID,
			Details:       e.Details,
			SourceAddress: e.SourceAddress,
			ClientAgent:   e.ClientAgent,
			OccurredAt:    e.OccurredAt,
		})
	}
	return EventListResponse{Events: out, Count: len(out)}
}

type timeRange struct {
	start time.Time
	end   time.Time
}

// parseTimeRange reads the optional ?start= and ?end= RFC 3339 parameters.
// Defaults cover the last 24 hours.
func parseTimeRange(r *http.Request) (timeRange, error) {
	now := time.Now().UTC()
	window := timeRange{start: now.Add(-24 * time.Hour), end: now}

	if raw := r.URL.Query().Get("end"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return timeRange{}, dErrors.New(dErrors.CodeInvalidInput, "end must be RFC 3339")
		}
		window.end = end
		window.start = end.Add(-24 * time.Hour)
	}
	if raw := r.URL.Query().Get("start"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return timeRange{}, dErrors.New(dErrors.CodeInvalidInput, "start must be RFC 3339")
		}
		window.start = start
	}
	if window.end.Before(window.start) {
		return timeRange{}, dErrors.New(dErrors.CodeInvalidInput, "end must not precede start")
	}
	return window, nil
}
