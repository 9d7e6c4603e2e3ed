package rewards_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecosignal.fr/rewards/internal/features/badges"
	"ecosignal.fr/rewards/internal/features/history"
	"ecosignal.fr/rewards/internal/features/ledger"
	"ecosignal.fr/rewards/internal/features/levels"
	"ecosignal.fr/rewards/internal/features/reports"
	"ecosignal.fr/rewards/internal/features/rewards"
	"ecosignal.fr/rewards/internal/features/users"
	"ecosignal.fr/rewards/internal/testutil/memstore"
)

func newService(store *memstore.Store) *rewards.Service {
	events := &memstore.Events{}
	hist := history.NewService(store.History())
	points := ledger.NewService(store.Users(), store.Ledger(), events)
	b := badges.NewService(store, store.Users(), store.Badges(), points, hist, events)
	l := levels.NewService(store.Users(), store.Levels(), hist, events)
	return rewards.NewService(b, l)
}

func process(t *testing.T, store *memstore.Store, svc *rewards.Service, userID uuid.UUID) *rewards.Summary {
	t.Helper()
	var summary *rewards.Summary
	err := pgx.BeginFunc(context.Background(), store, func(tx pgx.Tx) error {
		var err error
		summary, err = svc.ProcessRewardsAfterActivity(context.Background(), tx, userID)
		return err
	})
	require.NoError(t, err)
	return summary
}

func TestProcessRewards_BadgeBonusCountsTowardLevel(t *testing.T) {
	store := memstore.New()
	store.SeedCatalog()
	svc := newService(store)

	// 45 points: FIRST_REPORT's +5 reaches level 2 at exactly 50.
	u := store.AddUser(users.User{Points: 45})
	store.AddReport(reports.Report{UserID: u.ID, Status: reports.StatusValidated})

	summary := process(t, store, svc, u.ID)
	require.Len(t, summary.Badges, 1)
	assert.Equal(t, "FIRST_REPORT", summary.Badges[0].Code)
	assert.Equal(t, 5, summary.Badges[0].PointsReward)
	require.NotNil(t, summary.LevelUp)
	assert.Equal(t, 2, summary.LevelUp.Level)
	assert.Equal(t, "Apprenti", summary.LevelUp.Name)

	assert.Equal(t, 50, store.User(u.ID).Points)
	assert.Equal(t, 2, store.User(u.ID).Level)

	hist := store.HistoryEntries(u.ID)
	require.Len(t, hist, 2)
	assert.Equal(t, history.TypeBadge, hist[0].RewardType)
	assert.Equal(t, history.TypeLevelUp, hist[1].RewardType)
}

func TestProcessRewards_NothingEarned(t *testing.T) {
	store := memstore.New()
	store.SeedCatalog()
	svc := newService(store)
	u := store.AddUser(users.User{Points: 10})

	summary := process(t, store, svc, u.ID)
	assert.True(t, summary.Empty())

	raw, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.JSONEq(t, `{"badges":[],"levelUp":null}`, string(raw))
}

type callLog struct {
	calls []string
}

type fakeBadges struct {
	log *callLog
	err error
}

func (f *fakeBadges) CheckAndAwardBadges(context.Context, pgx.Tx, uuid.UUID) ([]*badges.Badge, error) {
	f.log.calls = append(f.log.calls, "badges")
	return nil, f.err
}

type fakeLevels struct {
	log *callLog
}

func (f *fakeLevels) CheckAndUpdateLevel(context.Context, pgx.Tx, uuid.UUID) (*levels.Level, error) {
	f.log.calls = append(f.log.calls, "levels")
	return &levels.Level{LevelNumber: 4, Name: "Protecteur"}, nil
}

func TestProcessRewards_Order(t *testing.T) {
	log := &callLog{}
	svc := rewards.NewService(&fakeBadges{log: log}, &fakeLevels{log: log})

	summary, err := svc.ProcessRewardsAfterActivity(context.Background(), nil, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"badges", "levels"}, log.calls)
	assert.NotNil(t, summary.Badges)
	assert.Equal(t, 4, summary.LevelUp.Level)
}

func TestProcessRewards_BadgeErrorStops(t *testing.T) {
	log := &callLog{}
	svc := rewards.NewService(&fakeBadges{log: log, err: assert.AnError}, &fakeLevels{log: log})

	_, err := svc.ProcessRewardsAfterActivity(context.Background(), nil, uuid.New())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []string{"badges"}, log.calls)
}
