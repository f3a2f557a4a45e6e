// Package postgres implements the monitored-user store on PostgreSQL.
//
// The monitored_users table carries a partial unique index on
// (user_id) WHERE is_active, so a concurrent double-flag surfaces as a
// constraint violation instead of a duplicate active record.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"mentorlab/internal/monitor"
	id "mentorlab/pkg/domain"
	"mentorlab/pkg/platform/sentinel"
)

// Store implements monitor.Store over database/sql with the pgx stdlib
// driver.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const recordColumns = `id, user_id, reason, operation_count, time_period, is_active, created_at, updated_at, resolved_at, resolved_by, resolution_notes`

// uniqueViolation is the Postgres error code raised by the partial index.
const uniqueViolation = "23505"

func (s *Store) Add(ctx context.Context, record monitor.MonitoredUser) (monitor.MonitoredUser, error) {
	if record.ID.IsNil() {
		record.ID = id.NewMonitoredUserID()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = record.CreatedAt

	query := `
		INSERT INTO monitored_users (id, user_id, reason, operation_count, time_period, is_active, created_at, updated_at, resolution_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(record.ID),
		uuid.UUID(record.UserID),
		record.Reason,
		record.OperationCount,
		record.TimePeriod.String(),
		record.IsActive,
		record.CreatedAt,
		record.UpdatedAt,
		record.ResolutionNotes,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return monitor.MonitoredUser{}, sentinel.ErrConflict
		}
		return monitor.MonitoredUser{}, fmt.Errorf("insert monitored user: %w", err)
	}
	return record, nil
}

func (s *Store) IsMonitored(ctx context.Context, userID id.UserID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM monitored_users WHERE user_id = $1 AND is_active)`

	var monitored bool
	if err := s.db.QueryRowContext(ctx, query, uuid.UUID(userID)).Scan(&monitored); err != nil {
		return false, fmt.Errorf("check monitored state: %w", err)
	}
	return monitored, nil
}

func (s *Store) GetActive(ctx context.Context) ([]monitor.MonitoredUser, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM monitored_users
		WHERE is_active
		ORDER BY created_at DESC
	`
	return s.queryRecords(ctx, query)
}

func (s *Store) GetAll(ctx context.Context) ([]monitor.MonitoredUser, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM monitored_users
		ORDER BY created_at DESC
	`
	return s.queryRecords(ctx, query)
}

func (s *Store) GetByID(ctx context.Context, recordID id.MonitoredUserID) (monitor.MonitoredUser, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM monitored_users
		WHERE id = $1
	`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, uuid.UUID(recordID)))
	if errors.Is(err, sql.ErrNoRows) {
		return monitor.MonitoredUser{}, sentinel.ErrNotFound
	}
	if err != nil {
		return monitor.MonitoredUser{}, fmt.Errorf("get monitored user: %w", err)
	}
	return record, nil
}

func (s *Store) Resolve(ctx context.Context, recordID id.MonitoredUserID, resolvedBy id.UserID, notes string, at time.Time) (monitor.MonitoredUser, error) {
	query := `
		UPDATE monitored_users
		SET is_active = FALSE,
		    resolved_at = $2,
		    resolved_by = $3,
		    resolution_notes = $4,
		    updated_at = $2
		WHERE id = $1 AND is_active
		RETURNING ` + recordColumns + `
	`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, uuid.UUID(recordID), at, uuid.UUID(resolvedBy), notes))
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish a missing record from one already resolved.
		if _, getErr := s.GetByID(ctx, recordID); getErr != nil {
			return monitor.MonitoredUser{}, getErr
		}
		return monitor.MonitoredUser{}, sentinel.ErrInvalidState
	}
	if err != nil {
		return monitor.MonitoredUser{}, fmt.Errorf("resolve monitored user: %w", err)
	}
	return record, nil
}

func (s *Store) Update(ctx context.Context, record monitor.MonitoredUser) (monitor.MonitoredUser, error) {
	query := `
		UPDATE monitored_users
		SET reason = $2,
		    operation_count = $3,
		    time_period = $4,
		    is_active = $5,
		    resolution_notes = $6,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + recordColumns + `
	`
	updated, err := scanRecord(s.db.QueryRowContext(ctx, query,
		uuid.UUID(record.ID),
		record.Reason,
		record.OperationCount,
		record.TimePeriod.String(),
		record.IsActive,
		record.ResolutionNotes,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return monitor.MonitoredUser{}, sentinel.ErrNotFound
	}
	if err != nil {
		return monitor.MonitoredUser{}, fmt.Errorf("update monitored user: %w", err)
	}
	return updated, nil
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]monitor.MonitoredUser, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query monitored users: %w", err)
	}
	defer rows.Close()

	var records []monitor.MonitoredUser
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan monitored user: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monitored users: %w", err)
	}
	return records, nil
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (monitor.MonitoredUser, error) {
	var (
		recordID   uuid.UUID
		userID     uuid.UUID
		timePeriod string
		resolvedAt sql.NullTime
		resolvedBy uuid.NullUUID
		record     monitor.MonitoredUser
	)
	err := row.Scan(
		&recordID,
		&userID,
		&record.Reason,
		&record.OperationCount,
		&timePeriod,
		&record.IsActive,
		&record.CreatedAt,
		&record.UpdatedAt,
		&resolvedAt,
		&resolvedBy,
		&record.ResolutionNotes,
	)
	if err != nil {
		return monitor.MonitoredUser{}, err
	}

	record.ID = id.MonitoredUserID(recordID)
	record.UserID = id.UserID(userID)
	record.TimePeriod = id.TimePeriod(timePeriod)
	if resolvedAt.Valid {
		t := resolvedAt.Time
		record.ResolvedAt = &t
	}
	if resolvedBy.Valid {
		record.ResolvedBy = id.UserID(resolvedBy.UUID)
	}
	return record, nil
}
