// Package users is the user-directory collaborator. The monitoring core only
// needs identity lookups to enrich operator views; account lifecycle lives in
// the platform's main service.
package users

import id "mentorlab/pkg/domain"

// User captures the display identity attached to monitored-user records.
type User struct {
	ID        id.UserID
	Email     string
	FirstName string
	LastName  string
	Role      id.Role
}
