// Package users - repository.go runs the SQL against the users table.
// Writes always go through the caller's transaction so they commit or roll
// back together with the rest of the unit of work.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ecosignal.fr/rewards/internal/common"
	"ecosignal.fr/rewards/internal/db/postgres"
)

// Repository reads and updates users rows.
type Repository struct {
	db postgres.Querier
}

// NewRepository creates the users repository.
func NewRepository(db postgres.Querier) *Repository {
	return &Repository{db: db}
}

const selectUser = `
	SELECT id, firstname, lastname, email, role, points, level, is_active, created_at, updated_at
	FROM users
	WHERE id = $1
`

func scanUser(row pgx.Row, id uuid.UUID) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role,
		&u.Points, &u.Level, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w (id=%s)", common.ErrUserNotFound, id)
		}
		return nil, fmt.Errorf("read user (id=%s): %w", id, err)
	}
	return &u, nil
}

// GetByID reads a user outside any transaction.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, selectUser, id), id)
}

// GetForUpdate reads a user inside tx and locks the row until tx ends.
// Two validations for the same user therefore apply their point changes one after the other.
func (r *Repository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*User, error) {
	return scanUser(tx.QueryRow(ctx, selectUser+" FOR UPDATE", id), id)
}

// UpdatePoints stores the new point total.
func (r *Repository) UpdatePoints(ctx context.Context, tx pgx.Tx, id uuid.UUID, points int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE users SET points = $2, updated_at = NOW() WHERE id = $1`, id, points)
	if err != nil {
		return fmt.Errorf("update points (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w (id=%s)", common.ErrUserNotFound, id)
	}
	return nil
}

// UpdateLevel stores the new level number. The SQL refuses to lower it.
func (r *Repository) UpdateLevel(ctx context.Context, tx pgx.Tx, id uuid.UUID, level int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE users SET level = $2, updated_at = NOW() WHERE id = $1 AND level < $2`, id, level)
	if err != nil {
		return fmt.Errorf("update level (id=%s): %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: level of user %s is already >= %d", common.ErrInvariantViolation, id, level)
	}
	return nil
}

// CountValidatedReports counts the user's reports in status validated, as seen by tx.
func (r *Repository) CountValidatedReports(ctx context.Context, tx pgx.Tx, id uuid.UUID) (int, error) {
	var count int
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM reports WHERE user_id = $1 AND status = 'validated'`, id,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count validated reports (id=%s): %w", id, err)
	}
	return count, nil
}
