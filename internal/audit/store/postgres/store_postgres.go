// Package postgres implements the audit log store on PostgreSQL. The
// audit_events table is append-only; no update or delete statements exist in
// this package.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mentorlab/internal/audit"
	id "mentorlab/pkg/domain"
)

// Store implements audit.Store over database/sql. Open the handle with the
// pgx stdlib driver.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const eventColumns = `id, actor_id, action, entity_type, entity_id, details, source_address, client_agent, occurred_at`

// Append inserts the event, preserving the caller-supplied OccurredAt.
func (s *Store) Append(ctx context.Context, event audit.Event) (audit.Event, error) {
	if event.ID.IsNil() {
		event.ID = id.NewEventID()
	}

	query := `
		INSERT INTO audit_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(event.ID),
		uuid.UUID(event.ActorID),
		event.Action.String(),
		event.EntityType.String(),
		event.EntityID,
		event.Details,
		event.SourceAddress,
		event.ClientAgent,
		event.OccurredAt,
	)
	if err != nil {
		return audit.Event{}, fmt.Errorf("insert audit event: %w", err)
	}
	return event, nil
}

func (s *Store) QueryByTimeRange(ctx context.Context, start, end time.Time, limit int) ([]audit.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		WHERE occurred_at BETWEEN $1 AND $2
		ORDER BY occurred_at DESC
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, start, end, nullableLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query audit events by range: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *Store) QueryByActor(ctx context.Context, actorID id.UserID, limit int) ([]audit.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		WHERE actor_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(actorID), nullableLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query audit events by actor: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *Store) QueryByEntity(ctx context.Context, entityType id.EntityType, entityID string, limit int) ([]audit.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY occurred_at DESC
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, entityType.String(), entityID, nullableLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query audit events by entity: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// nullableLimit maps "no limit" onto SQL NULL so LIMIT NULL means unbounded.
func nullableLimit(limit int) sql.NullInt64 {
	if limit <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(limit), Valid: true}
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			eventID    uuid.UUID
			actorID    uuid.UUID
			action     string
			entityType string
			event      audit.Event
		)
		err := rows.Scan(
			&eventID,
			&actorID,
			&action,
			&entityType,
			&event.EntityID,
			&event.Details,
			&event.SourceAddress,
			&event.ClientAgent,
			&event.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		event.ID = id.EventID(eventID)
		event.ActorID = id.UserID(actorID)
		event.Action = id.Action(action)
		event.EntityType = id.EntityType(entityType)
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
