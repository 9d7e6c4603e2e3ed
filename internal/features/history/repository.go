// Package history - repository.go appends to and reads reward_history.
package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ecosignal.fr/rewards/internal/db/postgres"
)

// Repository is the reward_history table.
type Repository struct {
	db postgres.Querier
}

// NewRepository creates the history repository.
func NewRepository(db postgres.Querier) *Repository {
	return &Repository{db: db}
}

// Insert appends e inside tx; metadata is stored as JSONB.
func (r *Repository) Insert(ctx context.Context, tx pgx.Tx, e *Entry) error {
	query := `
		INSERT INTO reward_history (id, user_id, reward_type, reward_id, description, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := tx.QueryRow(ctx, query,
		e.ID, e.UserID, e.RewardType, e.RewardID, e.Description, e.Metadata,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert reward history: %w", err)
	}
	return nil
}

// ListByUser returns one page of the user's rewards, newest first, and the total count.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reward_history WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count reward history: %w", err)
	}

	query := `
		SELECT id, user_id, reward_type, reward_id, description, metadata, created_at
		FROM reward_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reward history: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.RewardType, &e.RewardID, &e.Description, &e.Metadata, &e.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan reward history: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, total, rows.Err()
}
