package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecosignal.fr/rewards/internal/common"
	"ecosignal.fr/rewards/internal/features/users"
)

type fakeAttempts struct {
	failures int
	logged   []bool
}

func (f *fakeAttempts) LogAttempt(_ context.Context, _ uuid.UUID, success bool) error {
	f.logged = append(f.logged, success)
	if !success {
		f.failures++
	}
	return nil
}

func (f *fakeAttempts) CountRecentFailures(context.Context, uuid.UUID, time.Time) (int, error) {
	return f.failures, nil
}

type fakeUsers map[uuid.UUID]users.User

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*users.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return &u, nil
}

func TestAuthenticator(t *testing.T) {
	ctx := context.Background()
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	adminID, citizenID := uuid.New(), uuid.New()
	accounts := fakeUsers{
		adminID:   {ID: adminID, Role: users.RoleAdmin, IsActive: true},
		citizenID: {ID: citizenID, Role: users.RoleUser, IsActive: true},
	}

	t.Run("Success", func(t *testing.T) {
		attempts := &fakeAttempts{}
		auth := NewAuthenticator(attempts, accounts, hash)
		require.NoError(t, auth.Authenticate(ctx, adminID, "s3cret"))
		assert.Equal(t, []bool{true}, attempts.logged)
	})

	t.Run("LockedAfterThreeFailures", func(t *testing.T) {
		attempts := &fakeAttempts{}
		auth := NewAuthenticator(attempts, accounts, hash)
		for i := 0; i < MaxFailedAttempts; i++ {
			assert.ErrorIs(t, auth.Authenticate(ctx, adminID, "guess"), common.ErrWrongPassword)
		}
		err := auth.Authenticate(ctx, adminID, "s3cret")
		assert.ErrorIs(t, err, common.ErrTooManyAttempts)
		assert.ErrorIs(t, err, common.ErrUnauthorized)
		assert.Len(t, attempts.logged, MaxFailedAttempts)
	})

	t.Run("NotAnAdmin", func(t *testing.T) {
		auth := NewAuthenticator(&fakeAttempts{}, accounts, hash)
		assert.ErrorIs(t, auth.Authenticate(ctx, citizenID, "s3cret"), common.ErrNotAdmin)
	})

	t.Run("UnknownOperator", func(t *testing.T) {
		auth := NewAuthenticator(&fakeAttempts{}, accounts, hash)
		assert.ErrorIs(t, auth.Authenticate(ctx, uuid.New(), "s3cret"), common.ErrUserNotFound)
	})

	t.Run("NotConfigured", func(t *testing.T) {
		auth := NewAuthenticator(&fakeAttempts{}, accounts, "")
		assert.ErrorIs(t, auth.Authenticate(ctx, adminID, "s3cret"), common.ErrAdminNotConfigured)

		auth = NewAuthenticator(&fakeAttempts{}, accounts, "not-a-hash")
		err := auth.Authenticate(ctx, adminID, "s3cret")
		assert.True(t, errors.Is(err, common.ErrAdminNotConfigured))
	})
}
