// Package rewards - service.go composes badge evaluation and level progression.
// It never opens a transaction: callers pass the one their activity runs in.
package rewards

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ecosignal.fr/rewards/internal/features/badges"
	"ecosignal.fr/rewards/internal/features/levels"
)

// BadgeEvaluator grants the badges earned so far.
type BadgeEvaluator interface {
	CheckAndAwardBadges(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]*badges.Badge, error)
}

// LevelChecker promotes the user if their points allow it.
type LevelChecker interface {
	CheckAndUpdateLevel(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*levels.Level, error)
}

// Service runs the reward pipeline.
type Service struct {
	badges BadgeEvaluator
	levels LevelChecker
}

// NewService runs badges before levels.
func NewService(badges BadgeEvaluator, levels LevelChecker) *Service {
	return &Service{badges: badges, levels: levels}
}

// ProcessRewardsAfterActivity grants badges first and then checks the level,
// so badge bonus points count toward the promotion.
func (s *Service) ProcessRewardsAfterActivity(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*Summary, error) {
	granted, err := s.badges.CheckAndAwardBadges(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	level, err := s.levels.CheckAndUpdateLevel(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	return newSummary(granted, level), nil
}
