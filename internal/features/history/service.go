package history

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DefaultPageSize applies when List is called without a limit.
const DefaultPageSize = 50

// Store persists reward history.
type Store interface {
	Insert(ctx context.Context, tx pgx.Tx, e *Entry) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int, error)
}

// Service writes and reads the reward history.
type Service struct {
	store Store
}

// NewService creates the history service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Record fills the identifier of e and appends it inside tx.
func (s *Service) Record(ctx context.Context, tx pgx.Tx, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return s.store.Insert(ctx, tx, e)
}

// List returns one page of the user's rewards, newest first, and the total count.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	entries, total, err := s.store.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return entries, total, nil
}
