// Package reports - service.go runs the moderation workflow.
// Validation is one transaction: status change, point credit and rewards
// commit together or not at all.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"ecosignal.fr/rewards/internal/common"
	"ecosignal.fr/rewards/internal/features/analytics"
	"ecosignal.fr/rewards/internal/features/ledger"
	"ecosignal.fr/rewards/internal/features/rewards"
	"ecosignal.fr/rewards/internal/features/users"
	"ecosignal.fr/rewards/internal/metrics"
)

// TxStarter opens transactions. *pgxpool.Pool satisfies it.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store locks and updates reports.
type Store interface {
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*Report, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, by uuid.UUID, at time.Time) error
}

// PointsCreditor credits the author of a validated report.
type PointsCreditor interface {
	CreditReportPoints(ctx context.Context, tx pgx.Tx, userID, reportID uuid.UUID) (*ledger.Entry, error)
}

// RewardProcessor runs the reward pipeline.
type RewardProcessor interface {
	ProcessRewardsAfterActivity(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*rewards.Summary, error)
}

// UserReader reads a user inside the transaction.
type UserReader interface {
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*users.User, error)
}

// Service validates and rejects reports.
type Service struct {
	db      TxStarter
	store   Store
	users   UserReader
	points  PointsCreditor
	rewards RewardProcessor
	events  analytics.Emitter
	now     func() time.Time
}

// NewService creates the moderation service. A nil events discards analytics.
func NewService(
	db TxStarter,
	store Store,
	users UserReader,
	points PointsCreditor,
	rewards RewardProcessor,
	events analytics.Emitter,
) *Service {
	if events == nil {
		events = analytics.Discard
	}
	return &Service{
		db:      db,
		store:   store,
		users:   users,
		points:  points,
		rewards: rewards,
		events:  events,
		now:     time.Now,
	}
}

// Validate accepts a pending report on behalf of adminID, credits its author
// and grants the rewards that follow.
func (s *Service) Validate(ctx context.Context, reportID, adminID uuid.UUID) (*ValidationResult, error) {
	var result *ValidationResult

	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		rep, err := s.lockPending(ctx, tx, reportID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := s.store.UpdateStatus(ctx, tx, rep.ID, StatusValidated, adminID, now); err != nil {
			return err
		}
		rep.Status = StatusValidated
		rep.ValidatedAt = &now
		rep.ValidatedBy = &adminID

		entry, err := s.points.CreditReportPoints(ctx, tx, rep.UserID, rep.ID)
		if err != nil {
			return err
		}

		summary, err := s.rewards.ProcessRewardsAfterActivity(ctx, tx, rep.UserID)
		if err != nil {
			return err
		}

		author, err := s.users.GetForUpdate(ctx, tx, rep.UserID)
		if err != nil {
			return err
		}

		result = &ValidationResult{
			Report:        rep,
			PointsAwarded: entry.Points,
			NewTotal:      author.Points,
			Rewards:       summary,
		}
		return nil
	})
	if err != nil {
		metrics.ReportsProcessed.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("validate report %s: %w", common.ShortID(reportID), err)
	}

	metrics.ReportsProcessed.WithLabelValues(StatusValidated).Inc()
	log.WithFields(log.Fields{
		"report_id": result.Report.ID,
		"user_id":   result.Report.UserID,
		"admin_id":  adminID,
		"badges":    len(result.Rewards.Badges),
		"level_up":  result.Rewards.LevelUp != nil,
	}).Info("Report validated")

	s.events.Emit(analytics.ReportValidated(result.Report.UserID, result.Report.ID, adminID))
	return result, nil
}

// Reject refuses a pending report. No points and no rewards are granted.
func (s *Service) Reject(ctx context.Context, reportID, adminID uuid.UUID) (*Report, error) {
	var rep *Report

	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		r, err := s.lockPending(ctx, tx, reportID)
		if err != nil {
			return err
		}
		now := s.now()
		if err := s.store.UpdateStatus(ctx, tx, r.ID, StatusRejected, adminID, now); err != nil {
			return err
		}
		r.Status = StatusRejected
		r.ValidatedAt = &now
		r.ValidatedBy = &adminID
		rep = r
		return nil
	})
	if err != nil {
		metrics.ReportsProcessed.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("reject report %s: %w", common.ShortID(reportID), err)
	}

	metrics.ReportsProcessed.WithLabelValues(StatusRejected).Inc()
	log.WithFields(log.Fields{
		"report_id": rep.ID,
		"admin_id":  adminID,
	}).Info("Report rejected")
	return rep, nil
}

func (s *Service) lockPending(ctx context.Context, tx pgx.Tx, reportID uuid.UUID) (*Report, error) {
	rep, err := s.store.GetForUpdate(ctx, tx, reportID)
	if err != nil {
		return nil, err
	}
	if rep.Status != StatusPending {
		return nil, fmt.Errorf("%w (status=%s)", common.ErrReportAlreadyProcessed, rep.Status)
	}
	return rep, nil
}
