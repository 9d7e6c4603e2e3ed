// Package users reads and updates the reward-related columns of citizen accounts.
// Accounts are created by the authentication layer; this package only touches points and level.
package users

import (
	"time"

	"github.com/google/uuid"
)

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is one row of the users table.
type User struct {
	ID        uuid.UUID `db:"id"`
	FirstName string    `db:"firstname"`
	LastName  string    `db:"lastname"`
	Email     string    `db:"email"`
	Role      string    `db:"role"`
	Points    int       `db:"points"` // never below 0
	Level     int       `db:"level"`  // starts at 1, never decreases
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DisplayName returns "First Last", or the email when both are empty.
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}
