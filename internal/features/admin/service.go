// Package admin - service.go authenticates operators of the admin CLI.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"ecosignal.fr/rewards/internal/common"
	"ecosignal.fr/rewards/internal/features/users"
)

// AttemptStore keeps the history of password checks.
type AttemptStore interface {
	LogAttempt(ctx context.Context, operatorID uuid.UUID, success bool) error
	CountRecentFailures(ctx context.Context, operatorID uuid.UUID, since time.Time) (int, error)
}

// UserReader loads the operator account.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*users.User, error)
}

// Authenticator gates the mutating admin commands.
type Authenticator struct {
	attempts     AttemptStore
	users        UserReader
	passwordHash string
	now          func() time.Time
}

// NewAuthenticator checks passwords against passwordHash, an Argon2id hash.
func NewAuthenticator(attempts AttemptStore, users UserReader, passwordHash string) *Authenticator {
	return &Authenticator{
		attempts:     attempts,
		users:        users,
		passwordHash: passwordHash,
		now:          time.Now,
	}
}

// Authenticate checks that operatorID is an active admin account and that
// password matches the configured hash. Three failures within an hour lock
// the operator out until the window passes.
func (a *Authenticator) Authenticate(ctx context.Context, operatorID uuid.UUID, password string) error {
	if a.passwordHash == "" {
		return common.ErrAdminNotConfigured
	}

	operator, err := a.users.GetByID(ctx, operatorID)
	if err != nil {
		return err
	}
	if operator.Role != users.RoleAdmin || !operator.IsActive {
		return fmt.Errorf("%w (user=%s)", common.ErrNotAdmin, operatorID)
	}

	failures, err := a.attempts.CountRecentFailures(ctx, operatorID, a.now().Add(-AttemptWindow))
	if err != nil {
		return err
	}
	if failures >= MaxFailedAttempts {
		return common.ErrTooManyAttempts
	}

	match, err := VerifyPassword(password, a.passwordHash)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrAdminNotConfigured, err)
	}

	if err := a.attempts.LogAttempt(ctx, operatorID, match); err != nil {
		log.WithError(err).Warn("Could not record admin attempt")
	}

	if !match {
		log.WithField("operator", operatorID).Warn("Wrong admin password")
		return common.ErrWrongPassword
	}
	return nil
}
