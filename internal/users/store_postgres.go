package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "mentorlab/pkg/domain"
	"mentorlab/pkg/platform/sentinel"
)

// PostgresDirectory reads identities from the platform's users table. The
// monitoring service never writes to it.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) FindByID(ctx context.Context, userID id.UserID) (*User, error) {
	query := `
		SELECT id, email, first_name, last_name, role
		FROM users
		WHERE id = $1
	`

	var (
		uid  uuid.UUID
		user User
		role string
	)
	err := d.db.QueryRowContext(ctx, query, uuid.UUID(userID)).Scan(
		&uid,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&role,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	user.ID = id.UserID(uid)
	user.Role = id.Role(role)
	return &user, nil
}
