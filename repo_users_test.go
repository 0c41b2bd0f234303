package auth_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/lib26/Spring-Security-Study"
)

// newTestDB opens a per-test in-memory database with the schema applied.
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())
	require.NoError(t, auth.RunMigrations(context.Background(), bunDB))

	t.Cleanup(func() {
		bunDB.Close()
	})

	return bunDB
}

func TestUsersRepositoryRegister(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	manager := auth.NewRepositoryManager(db)
	manager.MustValidate()
	users := manager.Users()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	created, err := users.Register(ctx, &auth.User{
		Username:     "testuser",
		Nickname:     "Test User",
		PasswordHash: hash,
		Activated:    true,
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.Entitlements.Has(auth.EntitlementUser))

	t.Run("lookup round trip", func(t *testing.T) {
		found, err := users.GetByUsername(ctx, "testuser")
		require.NoError(t, err)

		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "Test User", found.Nickname)
		assert.True(t, found.Activated)
		assert.True(t, found.Entitlements.Has(auth.EntitlementUser))
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		_, err := users.Register(ctx, &auth.User{
			Username:     "testuser",
			Nickname:     "Imposter",
			PasswordHash: hash,
			Activated:    true,
		})
		require.Error(t, err)
		assert.True(t, auth.IsDuplicateIdentityError(err))
	})

	t.Run("unknown username is not found", func(t *testing.T) {
		found, err := users.GetByUsername(ctx, "ghost")
		require.Error(t, err)
		assert.Nil(t, found)
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestRepositoryManagerRunInTx(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	manager := auth.NewRepositoryManager(db)

	t.Run("registers inside a transaction", func(t *testing.T) {
		hash, err := auth.HashPassword("password123")
		require.NoError(t, err)

		err = manager.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			_, err := manager.Users().RegisterTx(ctx, tx, &auth.User{
				Username:     "txuser",
				Nickname:     "Tx User",
				PasswordHash: hash,
				Activated:    true,
			})
			return err
		})
		require.NoError(t, err)

		found, err := manager.Users().GetByUsername(ctx, "txuser")
		require.NoError(t, err)
		assert.Equal(t, "Tx User", found.Nickname)
	})

	t.Run("cancelled context short circuits", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := manager.RunInTx(cancelled, nil, func(ctx context.Context, tx bun.Tx) error {
			t.Fatal("transaction body should not run")
			return nil
		})
		assert.Error(t, err)
	})
}
