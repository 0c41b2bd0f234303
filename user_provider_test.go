package auth_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/lib26/Spring-Security-Study"
)

func makeStoredUser(t *testing.T, password string, activated bool) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	return &auth.User{
		ID:           uuid.New(),
		Username:     "testuser",
		Nickname:     "Test User",
		PasswordHash: hash,
		Activated:    activated,
		Entitlements: auth.NewEntitlementSet(auth.EntitlementUser),
	}
}

func assertTextCode(t *testing.T, err error, textCode string) {
	t.Helper()

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr), "expected rich error, got %v", err)
	assert.Equal(t, textCode, richErr.TextCode)
}

func TestVerifyIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		store := new(MockUserStore)
		user := makeStoredUser(t, "password123", true)
		store.On("GetByUsername", ctx, "testuser").Return(user, nil).Once()

		provider := auth.NewUserProvider(store)
		identity, err := provider.VerifyIdentity(ctx, "testuser", "password123")
		require.NoError(t, err)

		assert.Equal(t, "testuser", identity.Username())
		assert.Equal(t, "Test User", identity.Nickname())
		assert.True(t, identity.Active())
		assert.True(t, identity.Entitlements().Has(auth.EntitlementUser))
		store.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		store := new(MockUserStore)
		user := makeStoredUser(t, "password123", true)
		store.On("GetByUsername", ctx, "testuser").Return(user, nil).Once()

		provider := auth.NewUserProvider(store)
		identity, err := provider.VerifyIdentity(ctx, "testuser", "wrong-password")
		require.Error(t, err)
		assert.Nil(t, identity)
		assertTextCode(t, err, auth.TextCodeBadCredentials)
	})

	t.Run("unknown username", func(t *testing.T) {
		store := new(MockUserStore)
		store.On("GetByUsername", ctx, "ghost").
			Return(nil, repository.NewRecordNotFound()).Once()

		provider := auth.NewUserProvider(store)
		identity, err := provider.VerifyIdentity(ctx, "ghost", "password123")
		require.Error(t, err)
		assert.Nil(t, identity)
		assertTextCode(t, err, auth.TextCodeIdentityNotFound)
	})

	t.Run("deactivated identity", func(t *testing.T) {
		store := new(MockUserStore)
		user := makeStoredUser(t, "password123", false)
		store.On("GetByUsername", ctx, "testuser").Return(user, nil).Once()

		provider := auth.NewUserProvider(store)
		identity, err := provider.VerifyIdentity(ctx, "testuser", "password123")
		require.Error(t, err)
		assert.Nil(t, identity)
		assertTextCode(t, err, auth.TextCodeIdentityDeactivated)
	})
}

func TestFindIdentityByUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("existing identity", func(t *testing.T) {
		store := new(MockUserStore)
		user := makeStoredUser(t, "password123", true)
		store.On("GetByUsername", ctx, "testuser").Return(user, nil).Once()

		provider := auth.NewUserProvider(store)
		identity, err := provider.FindIdentityByUsername(ctx, "testuser")
		require.NoError(t, err)
		assert.Equal(t, "testuser", identity.Username())
	})

	t.Run("lookup miss is a hard error", func(t *testing.T) {
		store := new(MockUserStore)
		store.On("GetByUsername", ctx, "ghost").
			Return(nil, repository.NewRecordNotFound()).Once()

		provider := auth.NewUserProvider(store)
		identity, err := provider.FindIdentityByUsername(ctx, "ghost")
		require.Error(t, err)
		assert.Nil(t, identity)
		assertTextCode(t, err, auth.TextCodeIdentityNotFound)
	})
}
