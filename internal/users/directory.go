package users

import (
	"context"

	id "mentorlab/pkg/domain"
)

// Directory resolves user identities for display enrichment. Implementations
// return sentinel.ErrNotFound (optionally wrapped) for unknown IDs.
type Directory interface {
	FindByID(ctx context.Context, userID id.UserID) (*User, error)
}
