package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecosignal.fr/rewards/internal/testutil/pgmock"
)

func TestRepository_Insert(t *testing.T) {
	mock := pgmock.New(t)
	repo := NewRepository(mock)
	tx := pgmock.Tx(t, mock)

	ref := uuid.New()
	desc, refType := "Bonus for badge", RefBadge
	e := &Entry{
		ID: uuid.New(), UserID: uuid.New(), Points: -50, Reason: ReasonPenalty,
		Description: &desc, ReferenceID: &ref, ReferenceType: &refType,
	}
	created := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)

	mock.ExpectQuery(pgmock.SQL("INSERT INTO point_history")).
		WithArgs(e.ID, e.UserID, -50, ReasonPenalty, &desc, &ref, &refType).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	require.NoError(t, repo.Insert(context.Background(), tx, e))
	assert.Equal(t, created, e.CreatedAt)
}

func TestRepository_Insert_Error(t *testing.T) {
	mock := pgmock.New(t)
	repo := NewRepository(mock)
	tx := pgmock.Tx(t, mock)

	mock.ExpectQuery(pgmock.SQL("INSERT INTO point_history")).WillReturnError(assert.AnError)

	err := repo.Insert(context.Background(), tx, &Entry{ID: uuid.New(), UserID: uuid.New(), Points: 10, Reason: ReasonBonus})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRepository_ListByUser(t *testing.T) {
	mock := pgmock.New(t)
	repo := NewRepository(mock)
	userID := uuid.New()
	desc, refType := "Report #cccccccc validated", RefReport
	ref := uuid.New()
	at := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)

	mock.ExpectQuery(pgmock.SQL("SELECT COUNT(*) FROM point_history WHERE user_id = $1")).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(pgmock.SQL("LIMIT $2 OFFSET $3")).
		WithArgs(userID, 2, 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "points", "reason", "description", "reference_id", "reference_type", "created_at"}).
			AddRow(uuid.New(), userID, 10, ReasonReportValidated, &desc, &ref, &refType, at).
			AddRow(uuid.New(), userID, -3, ReasonPenalty, (*string)(nil), (*uuid.UUID)(nil), (*string)(nil), at.Add(-time.Hour)))

	entries, total, err := repo.ListByUser(context.Background(), userID, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, entries, 2)
	assert.Equal(t, ref, *entries[0].ReferenceID)
	assert.Equal(t, RefReport, *entries[0].ReferenceType)
	assert.Nil(t, entries[1].Description)
	assert.Equal(t, -3, entries[1].Points)
}
