package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecosignal.fr/rewards/internal/common"
	"ecosignal.fr/rewards/internal/testutil/pgmock"
)

var userColumns = []string{"id", "firstname", "lastname", "email", "role", "points", "level", "is_active", "created_at", "updated_at"}

func TestRepository_GetForUpdate(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("LocksRow", func(t *testing.T) {
		mock := pgmock.New(t)
		repo := NewRepository(mock)
		tx := pgmock.Tx(t, mock)

		mock.ExpectQuery("(?s)"+pgmock.SQL("FROM users")+".*"+pgmock.SQL("FOR UPDATE")).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows(userColumns).
				AddRow(id, "Lina", "Martin", "lina@example.fr", RoleUser, 45, 1, true, created, created))

		u, err := repo.GetForUpdate(ctx, tx, id)
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, 45, u.Points)
		assert.Equal(t, 1, u.Level)
		assert.Equal(t, "Lina Martin", u.DisplayName())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock := pgmock.New(t)
		repo := NewRepository(mock)
		tx := pgmock.Tx(t, mock)

		mock.ExpectQuery(pgmock.SQL("FOR UPDATE")).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows(userColumns))

		_, err := repo.GetForUpdate(ctx, tx, id)
		assert.ErrorIs(t, err, common.ErrUserNotFound)
	})
}

func TestRepository_GetByID_QueryError(t *testing.T) {
	mock := pgmock.New(t)
	repo := NewRepository(mock)
	id := uuid.New()
	boom := errors.New("connection reset")

	mock.ExpectQuery(pgmock.SQL("FROM users")).WithArgs(id).WillReturnError(boom)

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, common.ErrNotFound)
}

func TestRepository_UpdatePoints(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	tests := []struct {
		name    string
		result  int64
		wantErr error
	}{
		{"Updated", 1, nil},
		{"MissingUser", 0, common.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := pgmock.New(t)
			repo := NewRepository(mock)
			tx := pgmock.Tx(t, mock)

			mock.ExpectExec(pgmock.SQL("UPDATE users SET points = $2")).
				WithArgs(id, 60).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.result))

			err := repo.UpdatePoints(ctx, tx, id, 60)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRepository_UpdateLevel(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("Raises", func(t *testing.T) {
		mock := pgmock.New(t)
		repo := NewRepository(mock)
		tx := pgmock.Tx(t, mock)

		mock.ExpectExec(pgmock.SQL("WHERE id = $1 AND level < $2")).
			WithArgs(id, 3).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.UpdateLevel(ctx, tx, id, 3))
	})

	t.Run("RefusesToLower", func(t *testing.T) {
		mock := pgmock.New(t)
		repo := NewRepository(mock)
		tx := pgmock.Tx(t, mock)

		mock.ExpectExec(pgmock.SQL("level < $2")).
			WithArgs(id, 2).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateLevel(ctx, tx, id, 2)
		assert.ErrorIs(t, err, common.ErrInvariantViolation)
	})
}

func TestRepository_CountValidatedReports(t *testing.T) {
	mock := pgmock.New(t)
	repo := NewRepository(mock)
	tx := pgmock.Tx(t, mock)
	id := uuid.New()

	mock.ExpectQuery(pgmock.SQL("FROM reports WHERE user_id = $1 AND status = 'validated'")).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.CountValidatedReports(context.Background(), tx, id)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}
