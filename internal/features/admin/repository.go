// Package admin - repository.go records password attempts in admin_login_attempts.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ecosignal.fr/rewards/internal/db/postgres"
)

// Repository is the admin_login_attempts table.
type Repository struct {
	db postgres.Querier
}

// NewRepository creates the attempts repository.
func NewRepository(db postgres.Querier) *Repository {
	return &Repository{db: db}
}

// LogAttempt records one password check.
func (r *Repository) LogAttempt(ctx context.Context, operatorID uuid.UUID, success bool) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO admin_login_attempts (operator_id, success) VALUES ($1, $2)`,
		operatorID, success,
	)
	if err != nil {
		return fmt.Errorf("log admin attempt: %w", err)
	}
	return nil
}

// CountRecentFailures counts failed checks of operatorID since the given time.
func (r *Repository) CountRecentFailures(ctx context.Context, operatorID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM admin_login_attempts
		WHERE operator_id = $1 AND success = FALSE AND attempt_time >= $2
	`, operatorID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count admin attempts: %w", err)
	}
	return count, nil
}
