// Package levels - repository.go reads the levels catalog.
package levels

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ecosignal.fr/rewards/internal/db/postgres"
)

// Repository reads the levels table.
type Repository struct {
	db postgres.Querier
}

// NewRepository creates the levels repository.
func NewRepository(db postgres.Querier) *Repository {
	return &Repository{db: db}
}

const levelColumns = `id, level_number, name, min_points, icon`

// FindQualifying returns the highest level reachable with points, or nil.
func (r *Repository) FindQualifying(ctx context.Context, tx pgx.Tx, points int) (*Level, error) {
	var l Level
	err := tx.QueryRow(ctx, `
		SELECT `+levelColumns+`
		FROM levels
		WHERE min_points <= $1
		ORDER BY level_number DESC
		LIMIT 1
	`, points).Scan(&l.ID, &l.LevelNumber, &l.Name, &l.MinPoints, &l.Icon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find qualifying level: %w", err)
	}
	return &l, nil
}

// ListAll returns the catalog ordered by level number.
func (r *Repository) ListAll(ctx context.Context) ([]*Level, error) {
	rows, err := r.db.Query(ctx, `SELECT `+levelColumns+` FROM levels ORDER BY level_number`)
	if err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	defer rows.Close()

	var list []*Level
	for rows.Next() {
		var l Level
		if err := rows.Scan(&l.ID, &l.LevelNumber, &l.Name, &l.MinPoints, &l.Icon); err != nil {
			return nil, fmt.Errorf("scan level: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
