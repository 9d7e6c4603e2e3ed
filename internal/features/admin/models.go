// Package admin gates the mutating admin commands behind the Argon2id
// password from ADMIN_PASSWORD_HASH, with brute-force protection.
package admin

import (
	"time"

	"github.com/google/uuid"
)

// MaxFailedAttempts failures within AttemptWindow lock an operator out.
const (
	MaxFailedAttempts = 3
	AttemptWindow     = time.Hour
)

// LoginAttempt is one password check, kept for brute-force protection.
type LoginAttempt struct {
	ID          int64     `db:"id"`
	OperatorID  uuid.UUID `db:"operator_id"`
	AttemptTime time.Time `db:"attempt_time"`
	Success     bool      `db:"success"`
}
