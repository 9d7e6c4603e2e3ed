// Package badges - repository.go reads the badges catalog and writes user_badges.
package badges

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ecosignal.fr/rewards/internal/common"
	"ecosignal.fr/rewards/internal/db/postgres"
)

// Repository reads badges and writes user_badges.
type Repository struct {
	db postgres.Querier
}

// NewRepository creates the badges repository.
func NewRepository(db postgres.Querier) *Repository {
	return &Repository{db: db}
}

const badgeColumns = `b.id, b.code, b.name, b.description, b.icon, b.category,
	b.condition_type, b.condition_value, b.points_reward, b.is_active`

// catalogOrder is the iteration order of evaluation and listings.
const catalogOrder = `ORDER BY b.category, b.condition_value, b.code`

func scanBadge(row pgx.Row, b *Badge, extra ...any) error {
	dest := []any{
		&b.ID, &b.Code, &b.Name, &b.Description, &b.Icon, &b.Category,
		&b.ConditionType, &b.ConditionValue, &b.PointsReward, &b.IsActive,
	}
	return row.Scan(append(dest, extra...)...)
}

func collectBadges(rows pgx.Rows) ([]*Badge, error) {
	defer rows.Close()
	var list []*Badge
	for rows.Next() {
		var b Badge
		if err := scanBadge(rows, &b); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// ListEarnedCodes returns the codes of the badges userID holds, as seen by tx.
func (r *Repository) ListEarnedCodes(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]string, error) {
	rows, err := tx.Query(ctx, `
		SELECT b.code
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list earned badges: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan earned badge: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// ListCandidates returns the active badges whose code is not in exclude, in catalog order.
func (r *Repository) ListCandidates(ctx context.Context, tx pgx.Tx, exclude []string) ([]*Badge, error) {
	if exclude == nil {
		exclude = []string{}
	}
	rows, err := tx.Query(ctx, `
		SELECT `+badgeColumns+`
		FROM badges b
		WHERE b.is_active AND NOT (b.code = ANY($1))
		`+catalogOrder, exclude)
	if err != nil {
		return nil, fmt.Errorf("list candidate badges: %w", err)
	}
	return collectBadges(rows)
}

// FindByCode looks a badge up by code, active or not.
func (r *Repository) FindByCode(ctx context.Context, tx pgx.Tx, code string) (*Badge, error) {
	var b Badge
	err := scanBadge(tx.QueryRow(ctx, `SELECT `+badgeColumns+` FROM badges b WHERE b.code = $1`, code), &b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w (code=%s)", common.ErrBadgeNotFound, code)
		}
		return nil, fmt.Errorf("find badge %s: %w", code, err)
	}
	return &b, nil
}

// HasUserBadge reports whether userID already holds badgeID.
func (r *Repository) HasUserBadge(ctx context.Context, tx pgx.Tx, userID, badgeID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_badges WHERE user_id = $1 AND badge_id = $2)`,
		userID, badgeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user badge: %w", err)
	}
	return exists, nil
}

// InsertUserBadge records a grant. A second grant of the same badge fails with ErrBadgeAlreadyHeld.
func (r *Repository) InsertUserBadge(ctx context.Context, tx pgx.Tx, ub *UserBadge) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO user_badges (id, user_id, badge_id, earned_at) VALUES ($1, $2, $3, $4)`,
		ub.ID, ub.UserID, ub.BadgeID, ub.EarnedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "idx_user_badges_unique") {
			return fmt.Errorf("%w (user=%s badge=%s)", common.ErrBadgeAlreadyHeld, ub.UserID, ub.BadgeID)
		}
		return fmt.Errorf("insert user badge: %w", err)
	}
	return nil
}

// ListUserBadges returns the user's badges, most recent first.
func (r *Repository) ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*EarnedBadge, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+badgeColumns+`, ub.earned_at
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1
		ORDER BY ub.earned_at DESC, b.code
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user badges: %w", err)
	}
	defer rows.Close()

	var list []*EarnedBadge
	for rows.Next() {
		var eb EarnedBadge
		if err := scanBadge(rows, &eb.Badge, &eb.EarnedAt); err != nil {
			return nil, fmt.Errorf("scan user badge: %w", err)
		}
		list = append(list, &eb)
	}
	return list, rows.Err()
}

// ListActive returns the active catalog in catalog order.
func (r *Repository) ListActive(ctx context.Context) ([]*Badge, error) {
	rows, err := r.db.Query(ctx, `SELECT `+badgeColumns+` FROM badges b WHERE b.is_active `+catalogOrder)
	if err != nil {
		return nil, fmt.Errorf("list active badges: %w", err)
	}
	return collectBadges(rows)
}
