// Package ledger - repository.go appends to and reads point_history.
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ecosignal.fr/rewards/internal/db/postgres"
)

// Repository is the point_history table.
type Repository struct {
	db postgres.Querier
}

// NewRepository creates the ledger repository.
func NewRepository(db postgres.Querier) *Repository {
	return &Repository{db: db}
}

// Insert appends e inside tx. CreatedAt is set by the database.
func (r *Repository) Insert(ctx context.Context, tx pgx.Tx, e *Entry) error {
	query := `
		INSERT INTO point_history (id, user_id, points, reason, description, reference_id, reference_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := tx.QueryRow(ctx, query,
		e.ID, e.UserID, e.Points, e.Reason, e.Description, e.ReferenceID, e.ReferenceType,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListByUser returns one page of entries, newest first, and the total count.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM point_history WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	query := `
		SELECT id, user_id, points, reason, description, reference_id, reference_type, created_at
		FROM point_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Points, &e.Reason, &e.Description,
			&e.ReferenceID, &e.ReferenceType, &e.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, total, rows.Err()
}
