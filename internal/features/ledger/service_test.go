package ledger_test

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecosignal.fr/rewards/internal/common"
	"ecosignal.fr/rewards/internal/features/analytics"
	"ecosignal.fr/rewards/internal/features/ledger"
	"ecosignal.fr/rewards/internal/features/users"
	"ecosignal.fr/rewards/internal/testutil/memstore"
)

func setup(t *testing.T) (*memstore.Store, *memstore.Events, *ledger.Service) {
	t.Helper()
	store := memstore.New()
	events := &memstore.Events{}
	return store, events, ledger.NewService(store.Users(), store.Ledger(), events)
}

// inTx runs fn in a committed transaction.
func inTx(t *testing.T, store *memstore.Store, fn func(tx pgx.Tx) error) error {
	t.Helper()
	return pgx.BeginFunc(context.Background(), store, fn)
}

func TestAddPoints_FloorsAtZero(t *testing.T) {
	store, _, svc := setup(t)
	u := store.AddUser(users.User{Points: 5})

	err := inTx(t, store, func(tx pgx.Tx) error {
		entry, err := svc.AddPoints(context.Background(), tx, ledger.AddPointsParams{
			UserID: u.ID, Points: -50, Reason: ledger.ReasonPenalty,
		})
		require.NoError(t, err)
		assert.Equal(t, -50, entry.Points)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 0, store.User(u.ID).Points)
	entries := store.LedgerEntries(u.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, -50, entries[0].Points)
	assert.Equal(t, ledger.ReasonPenalty, entries[0].Reason)
}

func TestAddPoints_OneEntryPerCall(t *testing.T) {
	store, _, svc := setup(t)
	u := store.AddUser(users.User{})
	deltas := []int{10, -3, 25, -100, 7}

	err := inTx(t, store, func(tx pgx.Tx) error {
		for _, d := range deltas {
			if _, err := svc.AddPoints(context.Background(), tx, ledger.AddPointsParams{
				UserID: u.ID, Points: d, Reason: ledger.ReasonOther,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	entries := store.LedgerEntries(u.ID)
	require.Len(t, entries, len(deltas))
	for i, d := range deltas {
		assert.Equal(t, d, entries[i].Points)
	}
	// 10, 7, 32, 0, 7
	assert.Equal(t, 7, store.User(u.ID).Points)
}

func TestAddPoints_Errors(t *testing.T) {
	store, _, svc := setup(t)
	u := store.AddUser(users.User{Points: 20})
	ref := uuid.New()

	tests := []struct {
		name   string
		params ledger.AddPointsParams
		kind   error
		want   error
	}{
		{"ZeroDelta", ledger.AddPointsParams{UserID: u.ID, Points: 0, Reason: ledger.ReasonBonus}, common.ErrInvariantViolation, common.ErrZeroDelta},
		{"UnknownReason", ledger.AddPointsParams{UserID: u.ID, Points: 1, Reason: "gift"}, common.ErrInvariantViolation, common.ErrInvalidPointsParams},
		{"ReferenceWithoutType", ledger.AddPointsParams{UserID: u.ID, Points: 1, Reason: ledger.ReasonBonus, ReferenceID: &ref}, common.ErrInvariantViolation, common.ErrInvalidPointsParams},
		{"DeltaAboveColumnRange", ledger.AddPointsParams{UserID: u.ID, Points: math.MaxInt32 + 1, Reason: ledger.ReasonBonus}, common.ErrInvariantViolation, common.ErrInvalidPointsParams},
		{"DeltaBelowColumnRange", ledger.AddPointsParams{UserID: u.ID, Points: math.MinInt32 - 1, Reason: ledger.ReasonPenalty}, common.ErrInvariantViolation, common.ErrInvalidPointsParams},
		{"UnknownUser", ledger.AddPointsParams{UserID: uuid.New(), Points: 1, Reason: ledger.ReasonBonus}, common.ErrNotFound, common.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := inTx(t, store, func(tx pgx.Tx) error {
				_, err := svc.AddPoints(context.Background(), tx, tt.params)
				return err
			})
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	assert.Equal(t, 20, store.User(u.ID).Points)
	assert.Empty(t, store.LedgerEntries(u.ID))
}

func TestAddPoints_CapsBalance(t *testing.T) {
	store, _, svc := setup(t)
	u := store.AddUser(users.User{Points: ledger.MaxBalance - 5})

	err := inTx(t, store, func(tx pgx.Tx) error {
		_, err := svc.AddPoints(context.Background(), tx, ledger.AddPointsParams{
			UserID: u.ID, Points: 10, Reason: ledger.ReasonBonus,
		})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.MaxBalance, store.User(u.ID).Points)
	entries := store.LedgerEntries(u.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, 10, entries[0].Points)
}

func TestAddPoints_FailedInsertRollsBackBalance(t *testing.T) {
	store, _, svc := setup(t)
	u := store.AddUser(users.User{Points: 3})
	store.FailOn["ledger.Insert"] = assert.AnError

	err := inTx(t, store, func(tx pgx.Tx) error {
		_, err := svc.AddPoints(context.Background(), tx, ledger.AddPointsParams{
			UserID: u.ID, Points: 10, Reason: ledger.ReasonBonus,
		})
		return err
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 3, store.User(u.ID).Points)
}

func TestCreditReportPoints(t *testing.T) {
	store, events, svc := setup(t)
	u := store.AddUser(users.User{})
	reportID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

	err := inTx(t, store, func(tx pgx.Tx) error {
		_, err := svc.CreditReportPoints(context.Background(), tx, u.ID, reportID)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, ledger.PointsPerValidatedReport, store.User(u.ID).Points)
	entries := store.LedgerEntries(u.ID)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, 10, e.Points)
	assert.Equal(t, ledger.ReasonReportValidated, e.Reason)
	assert.Equal(t, "Report #550e8400 validated", common.Deref(e.Description))
	assert.Equal(t, ledger.RefReport, common.Deref(e.ReferenceType))
	require.NotNil(t, e.ReferenceID)
	assert.Equal(t, reportID, *e.ReferenceID)

	assert.Equal(t, []string{analytics.EventPointsEarned}, events.Types())
}

func TestAddPoints_NoEventForDebits(t *testing.T) {
	store, events, svc := setup(t)
	u := store.AddUser(users.User{Points: 30})

	err := inTx(t, store, func(tx pgx.Tx) error {
		_, err := svc.AddPoints(context.Background(), tx, ledger.AddPointsParams{
			UserID: u.ID, Points: -5, Reason: ledger.ReasonPenalty,
		})
		return err
	})
	require.NoError(t, err)
	assert.Empty(t, events.Types())
}

func TestReadQueries(t *testing.T) {
	store, _, svc := setup(t)
	u := store.AddUser(users.User{})
	ctx := context.Background()

	require.NoError(t, inTx(t, store, func(tx pgx.Tx) error {
		for i := 1; i <= 3; i++ {
			if _, err := svc.AddPoints(ctx, tx, ledger.AddPointsParams{
				UserID: u.ID, Points: i, Reason: ledger.ReasonOther,
			}); err != nil {
				return err
			}
		}
		return nil
	}))

	points, err := svc.GetUserPoints(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, points)

	_, err = svc.GetUserPoints(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrUserNotFound)

	t.Run("DefaultLimitNewestFirst", func(t *testing.T) {
		entries, total, err := svc.GetHistory(ctx, u.ID, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, entries, 3)
		assert.Equal(t, 3, entries[0].Points)
		assert.Equal(t, 1, entries[2].Points)
	})

	t.Run("Page", func(t *testing.T) {
		entries, total, err := svc.GetHistory(ctx, u.ID, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, entries, 1)
		assert.Equal(t, 1, entries[0].Points)
	})

	t.Run("EmptyIsNotNil", func(t *testing.T) {
		entries, total, err := svc.GetHistory(ctx, uuid.New(), 10, 0)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.NotNil(t, entries)
	})
}
