// Package ledger - service.go applies point deltas.
// Every call runs inside the caller's transaction: the balance update and the
// ledger insert commit or roll back together with the rest of the caller's work.
package ledger

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"ecosignal.fr/rewards/internal/common"
	"ecosignal.fr/rewards/internal/features/analytics"
	"ecosignal.fr/rewards/internal/features/users"
	"ecosignal.fr/rewards/internal/metrics"
)

// DefaultPageSize applies when a history query gives no limit.
const DefaultPageSize = 50

// UserStore reads and updates balances.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*users.User, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*users.User, error)
	UpdatePoints(ctx context.Context, tx pgx.Tx, id uuid.UUID, points int) error
}

// EntryStore persists ledger entries.
type EntryStore interface {
	Insert(ctx context.Context, tx pgx.Tx, e *Entry) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int, error)
}

// Service owns every change to a user's point balance.
type Service struct {
	users    UserStore
	entries  EntryStore
	events   analytics.Emitter
	validate *validator.Validate
}

// NewService creates the ledger service. A nil events discards analytics.
func NewService(users UserStore, entries EntryStore, events analytics.Emitter) *Service {
	if events == nil {
		events = analytics.Discard
	}
	return &Service{
		users:    users,
		entries:  entries,
		events:   events,
		validate: validator.New(),
	}
}

// AddPoints applies p.Points to the user's balance, floored at zero, and
// appends a ledger entry recording the requested delta.
func (s *Service) AddPoints(ctx context.Context, tx pgx.Tx, p AddPointsParams) (*Entry, error) {
	if p.Points == 0 {
		return nil, common.ErrZeroDelta
	}
	if err := s.validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidPointsParams, err)
	}

	user, err := s.users.GetForUpdate(ctx, tx, p.UserID)
	if err != nil {
		return nil, err
	}

	newTotal := ApplyDelta(user.Points, p.Points)
	if err := s.users.UpdatePoints(ctx, tx, user.ID, newTotal); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:            uuid.New(),
		UserID:        user.ID,
		Points:        p.Points,
		Reason:        p.Reason,
		Description:   common.NullIfEmpty(p.Description),
		ReferenceID:   p.ReferenceID,
		ReferenceType: common.NullIfEmpty(p.ReferenceType),
	}
	if err := s.entries.Insert(ctx, tx, entry); err != nil {
		return nil, err
	}

	direction := "credit"
	if p.Points < 0 {
		direction = "debit"
	}
	metrics.PointsApplied.WithLabelValues(p.Reason, direction).Add(float64(abs(p.Points)))

	log.WithFields(log.Fields{
		"user_id": user.ID,
		"delta":   p.Points,
		"reason":  p.Reason,
		"total":   newTotal,
	}).Info("Points applied")

	if p.Points > 0 {
		meta := map[string]any{}
		if p.ReferenceID != nil {
			meta["referenceId"] = p.ReferenceID.String()
			meta["referenceType"] = p.ReferenceType
		}
		s.events.Emit(analytics.PointsEarned(user.ID, p.Points, p.Reason, meta))
	}

	return entry, nil
}

// CreditReportPoints credits PointsPerValidatedReport for reportID.
func (s *Service) CreditReportPoints(ctx context.Context, tx pgx.Tx, userID, reportID uuid.UUID) (*Entry, error) {
	return s.AddPoints(ctx, tx, AddPointsParams{
		UserID:        userID,
		Points:        PointsPerValidatedReport,
		Reason:        ReasonReportValidated,
		Description:   fmt.Sprintf("Report #%s validated", common.ShortID(reportID)),
		ReferenceID:   &reportID,
		ReferenceType: RefReport,
	})
}

// GetUserPoints returns the committed balance.
func (s *Service) GetUserPoints(ctx context.Context, userID uuid.UUID) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.Points, nil
}

// GetHistory returns one page of the user's ledger, newest first, and the total count.
func (s *Service) GetHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	entries, total, err := s.entries.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return entries, total, nil
}

// FormatEntry renders e as one CLI line.
func FormatEntry(e *Entry) string {
	line := e.CreatedAt.Format("2006-01-02 15:04") + " | " + common.FormatPoints(e.Points) + " | " + e.Reason
	if e.Description != nil {
		line += " | " + *e.Description
	}
	return line
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
