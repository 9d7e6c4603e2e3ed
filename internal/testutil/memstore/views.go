package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ecosignal.fr/rewards/internal/common"
	"ecosignal.fr/rewards/internal/features/badges"
	"ecosignal.fr/rewards/internal/features/history"
	"ecosignal.fr/rewards/internal/features/ledger"
	"ecosignal.fr/rewards/internal/features/levels"
	"ecosignal.fr/rewards/internal/features/reports"
	"ecosignal.fr/rewards/internal/features/users"
)

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

// --- users ---

type UserView struct{ s *Store }

func (s *Store) Users() *UserView { return &UserView{s} }

func (v *UserView) get(id uuid.UUID) (*users.User, error) {
	u, ok := v.s.data.users[id]
	if !ok {
		return nil, fmt.Errorf("%w (id=%s)", common.ErrUserNotFound, id)
	}
	return &u, nil
}

func (v *UserView) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fail("users.GetByID"); err != nil {
		return nil, err
	}
	return v.get(id)
}

func (v *UserView) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*users.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.write(tx, "users.GetForUpdate"); err != nil {
		return nil, err
	}
	return v.get(id)
}

func (v *UserView) UpdatePoints(ctx context.Context, tx pgx.Tx, id uuid.UUID, points int) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.write(tx, "users.UpdatePoints"); err != nil {
		return err
	}
	u, err := v.get(id)
	if err != nil {
		return err
	}
	if points < 0 {
		return fmt.Errorf("users_points_check violated: %d", points)
	}
	u.Points = points
	v.s.data.users[id] = *u
	return nil
}

func (v *UserView) UpdateLevel(ctx context.Context, tx pgx.Tx, id uuid.UUID, level int) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.write(tx, "users.UpdateLevel"); err != nil {
		return err
	}
	u, err := v.get(id)
	if err != nil {
		return err
	}
	if u.Level >= level {
		return fmt.Errorf("%w: level of user %s is already >= %d", common.ErrInvariantViolation, id, level)
	}
	u.Level = level
	v.s.data.users[id] = *u
	return nil
}

func (v *UserView) CountValidatedReports(ctx context.Context, tx pgx.Tx, id uuid.UUID) (int, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.write(tx, "users.CountValidatedReports"); err != nil {
		return 0, err
	}
	n := 0
	for _, r := range v.s.data.reports {
		if r.UserID == id && r.Status == reports.StatusValidated {
			n++
		}
	}
	return n, nil
}

// --- ledger ---

type LedgerView struct{ s *Store }

func (s *Store) Ledger() *LedgerView { return &LedgerView{s} }

func (v *LedgerView) Insert(ctx context.Context, tx pgx.Tx, e *ledger.Entry) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.write(tx, "ledger.Insert"); err != nil {
		return err
	}
	if e.Points == 0 {
		return fmt.Errorf("point_history_points_check violated")
	}
	e.CreatedAt = v.s.now()
	v.s.data.ledger = append(v.s.data.ledger, *e)
	return nil
}

func (v *LedgerView) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ledger.Entry, int, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fail("ledger.ListByUser"); err != nil {
		return nil, 0, err
	}
	var all []*ledger.Entry
	for i := len(v.s.data.ledger) - 1; i >= 0; i-- {
		if e := v.s.data.ledger[i]; e.UserID == userID {
			all = append(all, &e)
		}
	}
	return page(all, limit, offset), len(all), nil
}

// --- history ---

type HistoryView struct{ s *Store }

func (s *Store) History() *HistoryView { return &HistoryView{s} }

func (v *HistoryView) Insert(ctx context.Context, tx pgx.Tx, e *history.Entry) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.write(tx, "history.Insert"); err != nil {
		return err
	}
	e.CreatedAt = v.s.now()
	v.s.data.history = append(v.s.data.history, *e)
	return nil
}

func (v *HistoryView) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*history.Entry, int, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fail("history.ListByUser"); err != nil {
		return nil, 0, err
	}
	var all []*history.Entry
	for i := len(v.s.data.history) - 1; i >= 0; i-- {
		if e := v.s.data.history[i]; e.UserID == userID {
			all = append(all, &e)
		}
	}
	return page(all, limit, offset), len(all), nil
}

// --- badges ---

type BadgeView struct{ s *Store }

func (s *Store) Badges() *BadgeView { return &BadgeView{s} }

func sortCatalog(list []*badges.Badge) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.ConditionValue != b.ConditionValue {
			return a.ConditionValue < b.ConditionValue
		}
		return a.Code < b.Code
	})
}

func (v *BadgeView) ListEarnedCodes(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]string, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.write(tx, "badges.ListEarnedCodes"); err != nil {
		return nil, err
	}
	return v.s.earnedCodes(userID), nil
}

func (v *BadgeView) ListCandidates(ctx context.Context, tx pgx.Tx, exclude []string) ([]*badges.Badge, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.write(tx, "badges.ListCandidates"); err != nil {
		return nil, err
	}
	var list []*badges.Badge
	for _, b := range v.s.data.badges {
		if b.IsActive && !slices.Contains(exclude, b.Code) {
			list = append(list, &b)
		}
	}
	sortCatalog(list)
	return list, nil
}

func (v *BadgeView) FindByCode(ctx context.Context, tx pgx.Tx, code string) (*badges.Badge, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.write(tx, "badges.FindByCode"); err != nil {
		return nil, err
	}
	for _, b := range v.s.data.badges {
		if b.Code == code {
			return &b, nil
		}
	}
	return nil, fmt.Errorf("%w (code=%s)", common.ErrBadgeNotFound, code)
}

func (v *BadgeView) HasUserBadge(ctx context.Context, tx pgx.Tx, userID, badgeID uuid.UUID) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.write(tx, "badges.HasUserBadge"); err != nil {
		return false, err
	}
	for _, ub := range v.s.data.userBadges {
		if ub.UserID == userID && ub.BadgeID == badgeID {
			return true, nil
		}
	}
	return false, nil
}

func (v *BadgeView) InsertUserBadge(ctx context.Context, tx pgx.Tx, ub *badges.UserBadge) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.write(tx, "badges.InsertUserBadge"); err != nil {
		return err
	}
	for _, existing := range v.s.data.userBadges {
		if existing.UserID == ub.UserID && existing.BadgeID == ub.BadgeID {
			return common.ErrBadgeAlreadyHeld
		}
	}
	v.s.data.userBadges = append(v.s.data.userBadges, *ub)
	return nil
}

func (v *BadgeView) ListUserBadges(ctx context.Context, userID uuid.UUID) ([]*badges.EarnedBadge, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fail("badges.ListUserBadges"); err != nil {
		return nil, err
	}
	var list []*badges.EarnedBadge
	for _, ub := range v.s.data.userBadges {
		if ub.UserID != userID {
			continue
		}
		if b := v.s.badgeByID(ub.BadgeID); b != nil {
			list = append(list, &badges.EarnedBadge{Badge: *b, EarnedAt: ub.EarnedAt})
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].EarnedAt.Equal(list[j].EarnedAt) {
			return list[i].EarnedAt.After(list[j].EarnedAt)
		}
		return list[i].Badge.Code < list[j].Badge.Code
	})
	return list, nil
}

func (v *BadgeView) ListActive(ctx context.Context) ([]*badges.Badge, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fail("badges.ListActive"); err != nil {
		return nil, err
	}
	var list []*badges.Badge
	for _, b := range v.s.data.badges {
		if b.IsActive {
			list = append(list, &b)
		}
	}
	sortCatalog(list)
	return list, nil
}

// --- levels ---

type LevelView struct{ s *Store }

func (s *Store) Levels() *LevelView { return &LevelView{s} }

func (v *LevelView) catalog() []*levels.Level {
	list := make([]*levels.Level, 0, len(v.s.data.levels))
	for _, l := range v.s.data.levels {
		list = append(list, &l)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].LevelNumber < list[j].LevelNumber })
	return list
}

func (v *LevelView) FindQualifying(ctx context.Context, tx pgx.Tx, points int) (*levels.Level, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.write(tx, "levels.FindQualifying"); err != nil {
		return nil, err
	}
	return levels.Qualifying(v.catalog(), points), nil
}

func (v *LevelView) ListAll(ctx context.Context) ([]*levels.Level, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.fail("levels.ListAll"); err != nil {
		return nil, err
	}
	return v.catalog(), nil
}

// --- reports ---

type ReportView struct{ s *Store }

func (s *Store) Reports() *ReportView { return &ReportView{s} }

func (v *ReportView) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*reports.Report, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.write(tx, "reports.GetForUpdate"); err != nil {
		return nil, err
	}
	r, ok := v.s.data.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w (id=%s)", common.ErrReportNotFound, id)
	}
	return &r, nil
}

func (v *ReportView) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, by uuid.UUID, at time.Time) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.write(tx, "reports.UpdateStatus"); err != nil {
		return err
	}
	r, ok := v.s.data.reports[id]
	if !ok || r.Status != reports.StatusPending {
		return fmt.Errorf("%w (id=%s)", common.ErrReportAlreadyProcessed, id)
	}
	r.Status = status
	r.ValidatedBy = &by
	r.ValidatedAt = &at
	v.s.data.reports[id] = r
	return nil
}
