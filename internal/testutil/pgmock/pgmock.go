// Package pgmock wraps pgxmock for repository tests.
package pgmock

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// New returns a mocked pool whose expectations are checked when the test ends.
func New(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return mock
}

// Tx opens a transaction on mock. Call it before setting the query expectations.
func Tx(t *testing.T, mock pgxmock.PgxPoolIface) pgx.Tx {
	t.Helper()
	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)
	return tx
}

// SQL matches queries containing fragment verbatim.
func SQL(fragment string) string {
	return regexp.QuoteMeta(fragment)
}
