// Package memstore is an in-memory implementation of every repository,
// used by service tests. Begin returns a transaction that snapshots the
// whole store and restores it on rollback. Writes without a transaction fail.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ecosignal.fr/rewards/internal/features/badges"
	"ecosignal.fr/rewards/internal/features/history"
	"ecosignal.fr/rewards/internal/features/ledger"
	"ecosignal.fr/rewards/internal/features/levels"
	"ecosignal.fr/rewards/internal/features/reports"
	"ecosignal.fr/rewards/internal/features/users"
)

// ErrNoTx is returned by writes called without a transaction.
var ErrNoTx = errors.New("memstore: write outside a transaction")

type state struct {
	users      map[uuid.UUID]users.User
	reports    map[uuid.UUID]reports.Report
	ledger     []ledger.Entry
	history    []history.Entry
	badges     []badges.Badge
	userBadges []badges.UserBadge
	levels     []levels.Level
}

func (s state) clone() state {
	c := state{
		users:      make(map[uuid.UUID]users.User, len(s.users)),
		reports:    make(map[uuid.UUID]reports.Report, len(s.reports)),
		ledger:     append([]ledger.Entry(nil), s.ledger...),
		history:    append([]history.Entry(nil), s.history...),
		badges:     append([]badges.Badge(nil), s.badges...),
		userBadges: append([]badges.UserBadge(nil), s.userBadges...),
		levels:     append([]levels.Level(nil), s.levels...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.reports {
		c.reports[k] = v
	}
	return c
}

// Store holds the data. The zero value is not usable, call New.
type Store struct {
	mu    sync.Mutex
	data  state
	clock time.Time

	// FailOn maps an operation name ("ledger.Insert", "badges.InsertUserBadge", ...)
	// to the error it returns.
	FailOn map[string]error

	// Begins counts opened transactions.
	Begins int
}

func New() *Store {
	return &Store{
		data: state{
			users:   map[uuid.UUID]users.User{},
			reports: map[uuid.UUID]reports.Report{},
		},
		clock:  time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		FailOn: map[string]error{},
	}
}

// now returns a strictly increasing time. Callers hold mu.
func (s *Store) now() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) fail(op string) error {
	if err, ok := s.FailOn[op]; ok {
		return err
	}
	return nil
}

// write checks the transaction and the injected failure of op. Callers hold mu.
func (s *Store) write(tx pgx.Tx, op string) error {
	t, ok := tx.(*memTx)
	if !ok || t == nil {
		return ErrNoTx
	}
	if t.closed {
		return pgx.ErrTxClosed
	}
	return s.fail(op)
}

// Begin opens a transaction over the whole store.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("Begin"); err != nil {
		return nil, err
	}
	s.Begins++
	return &memTx{store: s, snapshot: s.data.clone()}, nil
}

// memTx only implements Commit and Rollback; other pgx.Tx methods are never called.
type memTx struct {
	pgx.Tx
	store    *Store
	snapshot state
	closed   bool
}

func (t *memTx) Commit(ctx context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true
	if err := t.store.fail("Commit"); err != nil {
		t.store.data = t.snapshot
		return err
	}
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.closed = true
	t.store.data = t.snapshot
	return nil
}

// --- seeding and inspection ---

// AddUser stores u, defaulting its ID and level.
func (s *Store) AddUser(u users.User) users.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Level == 0 {
		u.Level = 1
	}
	if u.Email == "" {
		u.Email = fmt.Sprintf("%s@ecosignal.test", u.ID.String()[:8])
	}
	u.IsActive = true
	s.data.users[u.ID] = u
	return u
}

// User returns the committed state of a user.
func (s *Store) User(id uuid.UUID) users.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.users[id]
}

// SetPoints overwrites a user's balance without a ledger entry.
func (s *Store) SetPoints(id uuid.UUID, points int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.data.users[id]
	u.Points = points
	s.data.users[id] = u
}

// AddReport stores r, defaulting its ID and status.
func (s *Store) AddReport(r reports.Report) reports.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = reports.StatusPending
	}
	if r.ContainerID == uuid.Nil {
		r.ContainerID = uuid.New()
	}
	r.CreatedAt = s.now()
	s.data.reports[r.ID] = r
	return r
}

// Report returns the committed state of a report.
func (s *Store) Report(id uuid.UUID) reports.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.reports[id]
}

// AddBadge appends b to the catalog.
func (s *Store) AddBadge(b badges.Badge) badges.Badge {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Category == "" {
		b.Category = "general"
	}
	s.data.badges = append(s.data.badges, b)
	return b
}

// AddLevel appends l to the catalog.
func (s *Store) AddLevel(l levels.Level) levels.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	s.data.levels = append(s.data.levels, l)
	return l
}

// LedgerEntries returns the user's ledger in insertion order.
func (s *Store) LedgerEntries(userID uuid.UUID) []ledger.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ledger.Entry
	for _, e := range s.data.ledger {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// HistoryEntries returns the user's reward history in insertion order.
func (s *Store) HistoryEntries(userID uuid.UUID) []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []history.Entry
	for _, e := range s.data.history {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// BadgeCodes returns the codes the user holds, in grant order.
func (s *Store) BadgeCodes(userID uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.earnedCodes(userID)
}

func (s *Store) earnedCodes(userID uuid.UUID) []string {
	var codes []string
	for _, ub := range s.data.userBadges {
		if ub.UserID != userID {
			continue
		}
		if b := s.badgeByID(ub.BadgeID); b != nil {
			codes = append(codes, b.Code)
		}
	}
	return codes
}

func (s *Store) badgeByID(id uuid.UUID) *badges.Badge {
	for i := range s.data.badges {
		if s.data.badges[i].ID == id {
			b := s.data.badges[i]
			return &b
		}
	}
	return nil
}
