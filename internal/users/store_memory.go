package users

import (
	"context"
	"fmt"
	"sync"

	id "mentorlab/pkg/domain"
	"mentorlab/pkg/platform/sentinel"
)

// InMemoryDirectory is the test and development Directory implementation.
type InMemoryDirectory struct {
	mu    sync.RWMutex
	users map[id.UserID]*User
}

func NewInMemory() *InMemoryDirectory {
	return &InMemoryDirectory{users: make(map[id.UserID]*User)}
}

// Save adds or replaces a user record.
func (d *InMemoryDirectory) Save(_ context.Context, user *User) error {
	if user == nil || user.ID.IsNil() {
		return fmt.Errorf("user with non-nil ID is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	copied := *user
	d.users[user.ID] = &copied
	return nil
}

func (d *InMemoryDirectory) FindByID(_ context.Context, userID id.UserID) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, sentinel.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}
