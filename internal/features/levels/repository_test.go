package levels

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecosignal.fr/rewards/internal/testutil/pgmock"
)

var columns = []string{"id", "level_number", "name", "min_points", "icon"}

func TestRepository_FindQualifying(t *testing.T) {
	ctx := context.Background()
	icon := "🌿"

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface, id uuid.UUID)
		want      *Level
		wantErr   bool
	}{
		{
			name: "HighestReachable",
			setupMock: func(mock pgxmock.PgxPoolIface, id uuid.UUID) {
				mock.ExpectQuery("(?s)"+pgmock.SQL("WHERE min_points <= $1")+".*"+pgmock.SQL("ORDER BY level_number DESC")+".*"+pgmock.SQL("LIMIT 1")).
					WithArgs(200).
					WillReturnRows(pgxmock.NewRows(columns).AddRow(id, 3, "Éco-Citoyen", 150, &icon))
			},
			want: &Level{LevelNumber: 3, Name: "Éco-Citoyen", MinPoints: 150, Icon: &icon},
		},
		{
			name: "NoLevelIsNil",
			setupMock: func(mock pgxmock.PgxPoolIface, _ uuid.UUID) {
				mock.ExpectQuery(pgmock.SQL("FROM levels")).
					WithArgs(200).
					WillReturnRows(pgxmock.NewRows(columns))
			},
		},
		{
			name: "QueryError",
			setupMock: func(mock pgxmock.PgxPoolIface, _ uuid.UUID) {
				mock.ExpectQuery(pgmock.SQL("FROM levels")).
					WithArgs(200).
					WillReturnError(errors.New("relation levels does not exist"))
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := pgmock.New(t)
			repo := NewRepository(mock)
			tx := pgmock.Tx(t, mock)
			id := uuid.New()
			tt.setupMock(mock, id)

			got, err := repo.FindQualifying(ctx, tx, 200)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			tt.want.ID = id
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepository_ListAll(t *testing.T) {
	mock := pgmock.New(t)
	repo := NewRepository(mock)

	mock.ExpectQuery(pgmock.SQL("FROM levels ORDER BY level_number")).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(uuid.New(), 1, "Débutant", 0, (*string)(nil)).
			AddRow(uuid.New(), 2, "Curieux", 50, (*string)(nil)))

	list, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].LevelNumber)
	assert.Equal(t, 50, list[1].MinPoints)
	assert.Nil(t, list[1].Icon)
}
