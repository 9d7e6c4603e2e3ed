package history_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecosignal.fr/rewards/internal/features/history"
	"ecosignal.fr/rewards/internal/testutil/memstore"
)

func record(t *testing.T, store *memstore.Store, svc *history.Service, e *history.Entry) {
	t.Helper()
	err := pgx.BeginFunc(context.Background(), store, func(tx pgx.Tx) error {
		return svc.Record(context.Background(), tx, e)
	})
	require.NoError(t, err)
}

func TestRecord_FillsID(t *testing.T) {
	store := memstore.New()
	svc := history.NewService(store.History())
	userID := uuid.New()

	e := &history.Entry{UserID: userID, RewardType: history.TypeBadge, Description: `Badge "Premier Pas" earned`}
	record(t, store, svc, e)

	assert.NotEqual(t, uuid.Nil, e.ID)
	got := store.HistoryEntries(userID)
	require.Len(t, got, 1)
	assert.Equal(t, e.ID, got[0].ID)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestRecord_KeepsGivenID(t *testing.T) {
	store := memstore.New()
	svc := history.NewService(store.History())
	id := uuid.New()

	e := &history.Entry{ID: id, UserID: uuid.New(), RewardType: history.TypeLevelUp}
	record(t, store, svc, e)
	assert.Equal(t, id, e.ID)
}

func TestList(t *testing.T) {
	store := memstore.New()
	svc := history.NewService(store.History())
	userID := uuid.New()

	for _, d := range []string{"first", "second", "third"} {
		record(t, store, svc, &history.Entry{UserID: userID, RewardType: history.TypeBadge, Description: d})
	}
	record(t, store, svc, &history.Entry{UserID: uuid.New(), RewardType: history.TypeBadge, Description: "other"})

	t.Run("NewestFirst", func(t *testing.T) {
		entries, total, err := svc.List(context.Background(), userID, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, entries, 3)
		assert.Equal(t, "third", entries[0].Description)
		assert.Equal(t, "first", entries[2].Description)
	})

	t.Run("Page", func(t *testing.T) {
		entries, total, err := svc.List(context.Background(), userID, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, entries, 1)
		assert.Equal(t, "second", entries[0].Description)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		entries, total, err := svc.List(context.Background(), uuid.New(), 10, -5)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})
}

func TestList_StoreError(t *testing.T) {
	store := memstore.New()
	boom := errors.New("boom")
	store.FailOn["history.ListByUser"] = boom
	svc := history.NewService(store.History())

	_, _, err := svc.List(context.Background(), uuid.New(), 10, 0)
	assert.ErrorIs(t, err, boom)
}
