// Package badges - service.go evaluates and grants badges.
// Automatic evaluation runs inside the caller's transaction; manual grants
// open their own.
package badges

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"ecosignal.fr/rewards/internal/common"
	"ecosignal.fr/rewards/internal/features/analytics"
	"ecosignal.fr/rewards/internal/features/history"
	"ecosignal.fr/rewards/internal/features/ledger"
	"ecosignal.fr/rewards/internal/features/users"
	"ecosignal.fr/rewards/internal/metrics"
)

// TxStarter opens transactions. *pgxpool.Pool satisfies it.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UserStore reads the activity of a user.
type UserStore interface {
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*users.User, error)
	CountValidatedReports(ctx context.Context, tx pgx.Tx, id uuid.UUID) (int, error)
}

// Store is the badge persistence.
type Store interface {
	ListEarnedCodes(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]string, error)
	ListCandidates(ctx context.Context, tx pgx.Tx, exclude []string) ([]*Badge, error)
	FindByCode(ctx context.Context, tx pgx.Tx, code string) (*Badge, error)
	HasUserBadge(ctx context.Context, tx pgx.Tx, userID, badgeID uuid.UUID) (bool, error)
	InsertUserBadge(ctx context.Context, tx pgx.Tx, ub *UserBadge) error
	ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*EarnedBadge, error)
	ListActive(ctx context.Context) ([]*Badge, error)
}

// PointsAdder credits badge bonuses.
type PointsAdder interface {
	AddPoints(ctx context.Context, tx pgx.Tx, p ledger.AddPointsParams) (*ledger.Entry, error)
}

// HistoryRecorder writes the reward audit trail.
type HistoryRecorder interface {
	Record(ctx context.Context, tx pgx.Tx, e *history.Entry) error
}

// Service grants badges and lists them.
type Service struct {
	db      TxStarter
	users   UserStore
	store   Store
	points  PointsAdder
	history HistoryRecorder
	events  analytics.Emitter
	now     func() time.Time
}

// NewService creates the badge service. A nil events discards analytics.
func NewService(
	db TxStarter,
	users UserStore,
	store Store,
	points PointsAdder,
	history HistoryRecorder,
	events analytics.Emitter,
) *Service {
	if events == nil {
		events = analytics.Discard
	}
	return &Service{
		db:      db,
		users:   users,
		store:   store,
		points:  points,
		history: history,
		events:  events,
		now:     time.Now,
	}
}

// CheckAndAwardBadges grants every active badge the user qualifies for and
// does not hold yet. Eligibility is judged on the activity read at the start,
// so bonus points granted here do not unlock further badges in the same call.
// The result is never nil and is empty when the user does not exist.
func (s *Service) CheckAndAwardBadges(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]*Badge, error) {
	granted := []*Badge{}

	user, err := s.users.GetForUpdate(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return granted, nil
		}
		return nil, err
	}

	earned, err := s.store.ListEarnedCodes(ctx, tx, user.ID)
	if err != nil {
		return nil, err
	}
	reports, err := s.users.CountValidatedReports(ctx, tx, user.ID)
	if err != nil {
		return nil, err
	}
	activity := Activity{ValidatedReports: reports, Points: user.Points}

	candidates, err := s.store.ListCandidates(ctx, tx, earned)
	if err != nil {
		return nil, err
	}

	for _, b := range Eligible(candidates, activity) {
		if err := s.grant(ctx, tx, user.ID, b, PathAuto); err != nil {
			return nil, err
		}
		s.events.Emit(analytics.BadgeEarned(user.ID, b.Code, b.Name, b.PointsReward))
		granted = append(granted, b)
	}
	return granted, nil
}

// AwardBadgeManually grants the badge with code to the user in its own
// transaction. Inactive badges can be granted this way too.
func (s *Service) AwardBadgeManually(ctx context.Context, userID uuid.UUID, code string) (*Badge, error) {
	var badge *Badge
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		b, err := s.store.FindByCode(ctx, tx, code)
		if err != nil {
			return err
		}
		if _, err := s.users.GetForUpdate(ctx, tx, userID); err != nil {
			return err
		}
		held, err := s.store.HasUserBadge(ctx, tx, userID, b.ID)
		if err != nil {
			return err
		}
		if held {
			return fmt.Errorf("%w (badge=%s)", common.ErrBadgeAlreadyHeld, b.Code)
		}
		if err := s.grant(ctx, tx, userID, b, PathManual); err != nil {
			return err
		}
		badge = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Emit(analytics.BadgeEarned(userID, badge.Code, badge.Name, badge.PointsReward))
	return badge, nil
}

// grant writes the user badge, its history row and its bonus points.
func (s *Service) grant(ctx context.Context, tx pgx.Tx, userID uuid.UUID, b *Badge, path string) error {
	ub := &UserBadge{
		ID:       uuid.New(),
		UserID:   userID,
		BadgeID:  b.ID,
		EarnedAt: s.now(),
	}
	if err := s.store.InsertUserBadge(ctx, tx, ub); err != nil {
		return err
	}

	entry := &history.Entry{
		UserID:      userID,
		RewardType:  history.TypeBadge,
		RewardID:    &b.ID,
		Description: fmt.Sprintf("Badge %q earned", b.Name),
		Metadata:    map[string]any{"badgeCode": b.Code, "pointsReward": b.PointsReward},
	}
	if path == PathManual {
		entry.Description = fmt.Sprintf("Badge %q awarded manually", b.Name)
		entry.Metadata = map[string]any{"badgeCode": b.Code, "manual": true}
	}
	if err := s.history.Record(ctx, tx, entry); err != nil {
		return err
	}

	if b.PointsReward > 0 {
		_, err := s.points.AddPoints(ctx, tx, ledger.AddPointsParams{
			UserID:        userID,
			Points:        b.PointsReward,
			Reason:        ledger.ReasonBonus,
			Description:   fmt.Sprintf("Bonus for badge %q", b.Name),
			ReferenceID:   &b.ID,
			ReferenceType: ledger.RefBadge,
		})
		if err != nil {
			return err
		}
	}

	metrics.BadgesAwarded.WithLabelValues(b.Code, path).Inc()
	log.WithFields(log.Fields{
		"user_id": userID,
		"badge":   b.Code,
		"path":    path,
	}).Info("Badge granted")
	return nil
}

// GetUserBadges returns the user's badges, most recent first.
func (s *Service) GetUserBadges(ctx context.Context, userID uuid.UUID) ([]*EarnedBadge, error) {
	list, err := s.store.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*EarnedBadge{}
	}
	return list, nil
}

// GetAllBadgesWithStatus returns the active catalog, each badge flagged as
// earned or not by the user.
func (s *Service) GetAllBadgesWithStatus(ctx context.Context, userID uuid.UUID) ([]*BadgeStatus, error) {
	catalog, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	owned, err := s.store.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	earnedAt := make(map[uuid.UUID]time.Time, len(owned))
	for _, eb := range owned {
		earnedAt[eb.Badge.ID] = eb.EarnedAt
	}

	result := make([]*BadgeStatus, 0, len(catalog))
	for _, b := range catalog {
		st := &BadgeStatus{Badge: *b}
		if at, ok := earnedAt[b.ID]; ok {
			st.Earned = true
			st.EarnedAt = &at
		}
		result = append(result, st)
	}
	return result, nil
}
