// Package reports - repository.go locks and updates report rows.
package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ecosignal.fr/rewards/internal/common"
	"ecosignal.fr/rewards/internal/db/postgres"
)

// Repository locks and updates reports.
type Repository struct {
	db postgres.Querier
}

// NewRepository creates the reports repository.
func NewRepository(db postgres.Querier) *Repository {
	return &Repository{db: db}
}

// GetForUpdate reads a report and locks it until tx ends, so concurrent
// moderators of the same report are serialized on its status.
func (r *Repository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*Report, error) {
	var rep Report
	err := tx.QueryRow(ctx, `
		SELECT id, user_id, container_id, type, status, validated_at, validated_by, created_at
		FROM reports
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(
		&rep.ID, &rep.UserID, &rep.ContainerID, &rep.Type, &rep.Status,
		&rep.ValidatedAt, &rep.ValidatedBy, &rep.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w (id=%s)", common.ErrReportNotFound, id)
		}
		return nil, fmt.Errorf("read report %s: %w", id, err)
	}
	return &rep, nil
}

// UpdateStatus moves a pending report to status.
func (r *Repository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, by uuid.UUID, at time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE reports
		SET status = $2, validated_by = $3, validated_at = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id, status, by, at)
	if err != nil {
		return fmt.Errorf("update report %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w (id=%s)", common.ErrReportAlreadyProcessed, id)
	}
	return nil
}
