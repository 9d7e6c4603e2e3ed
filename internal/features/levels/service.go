// Package levels - service.go checks promotions and reports level progress.
package levels

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"ecosignal.fr/rewards/internal/common"
	"ecosignal.fr/rewards/internal/features/analytics"
	"ecosignal.fr/rewards/internal/features/history"
	"ecosignal.fr/rewards/internal/features/users"
	"ecosignal.fr/rewards/internal/metrics"
)

// UserStore reads users and raises their level.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*users.User, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*users.User, error)
	UpdateLevel(ctx context.Context, tx pgx.Tx, id uuid.UUID, level int) error
}

// Store reads the catalog.
type Store interface {
	FindQualifying(ctx context.Context, tx pgx.Tx, points int) (*Level, error)
	ListAll(ctx context.Context) ([]*Level, error)
}

// HistoryRecorder writes the reward audit trail.
type HistoryRecorder interface {
	Record(ctx context.Context, tx pgx.Tx, e *history.Entry) error
}

// Service promotes users and reports their level.
type Service struct {
	users   UserStore
	store   Store
	history HistoryRecorder
	events  analytics.Emitter
}

// NewService creates the level service. A nil events discards analytics.
func NewService(users UserStore, store Store, history HistoryRecorder, events analytics.Emitter) *Service {
	if events == nil {
		events = analytics.Discard
	}
	return &Service{users: users, store: store, history: history, events: events}
}

// CheckAndUpdateLevel promotes the user to the highest level their points
// qualify for, skipping intermediate levels if needed. It returns nil when
// nothing changes, including when the user does not exist.
func (s *Service) CheckAndUpdateLevel(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*Level, error) {
	user, err := s.users.GetForUpdate(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}

	target, err := s.store.FindQualifying(ctx, tx, user.Points)
	if err != nil {
		return nil, err
	}
	if !ShouldPromote(user.Level, target) {
		return nil, nil
	}

	oldLevel := user.Level
	if err := s.users.UpdateLevel(ctx, tx, user.ID, target.LevelNumber); err != nil {
		return nil, err
	}

	err = s.history.Record(ctx, tx, &history.Entry{
		UserID:      user.ID,
		RewardType:  history.TypeLevelUp,
		RewardID:    &target.ID,
		Description: fmt.Sprintf("Reached level %d - %s", target.LevelNumber, target.Name),
		Metadata: map[string]any{
			"oldLevel":  oldLevel,
			"newLevel":  target.LevelNumber,
			"levelName": target.Name,
		},
	})
	if err != nil {
		return nil, err
	}

	metrics.LevelUps.WithLabelValues(strconv.Itoa(target.LevelNumber)).Inc()
	log.WithFields(log.Fields{
		"user_id": user.ID,
		"from":    oldLevel,
		"level":   target.LevelNumber,
	}).Info("Level up")

	s.events.Emit(analytics.LevelUp(user.ID, target.LevelNumber, target.Name, oldLevel))
	return target, nil
}

// GetUserLevelInfo summarizes the user's level and the way to the next one.
func (s *Service) GetUserLevelInfo(ctx context.Context, userID uuid.UUID) (*Info, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	current := byNumber(catalog, user.Level)
	next := byNumber(catalog, user.Level+1)

	info := &Info{
		Level:    user.Level,
		Points:   user.Points,
		Progress: ComputeProgress(user.Points, current, next),
	}
	if current != nil {
		info.Name = current.Name
		info.Icon = current.Icon
	}
	if next != nil {
		info.NextLevel = &NextLevel{Level: next.LevelNumber, Name: next.Name, MinPoints: next.MinPoints}
	}
	return info, nil
}

// Catalog returns every level in order.
func (s *Service) Catalog(ctx context.Context) ([]*Level, error) {
	return s.store.ListAll(ctx)
}
