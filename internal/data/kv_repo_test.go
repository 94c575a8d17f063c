package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/catalog-admin/internal/ports"
	"github.com/target/catalog-admin/internal/testutil"
)

func TestKVRepo_SetGetRemove(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewKVRepo(db, "test:")
		ctx := context.Background()

		_, err := repo.Get(ctx, "token")
		require.ErrorIs(t, err, ports.ErrKeyNotFound)

		require.NoError(t, repo.Set(ctx, "token", "A1"))
		require.NoError(t, repo.Set(ctx, "token", "A2"))

		got, err := repo.Get(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, "A2", got)

		var stored string
		require.NoError(t, db.QueryRow(`SELECT value FROM client_kv WHERE key = $1`, "test:token").Scan(&stored))
		assert.Equal(t, "A2", stored)

		require.NoError(t, repo.Remove(ctx, "token"))
		require.NoError(t, repo.Remove(ctx, "token"))
		_, err = repo.Get(ctx, "token")
		assert.ErrorIs(t, err, ports.ErrKeyNotFound)
	})
}

func TestKVRepo_PrefixIsolation(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithAutoDB(t, func(db *sql.DB) {
		a := NewKVRepo(db, "a:")
		b := NewKVRepo(db, "b:")
		ctx := context.Background()

		require.NoError(t, a.Set(ctx, "user", `{"id":1}`))

		_, err := b.Get(ctx, "user")
		assert.ErrorIs(t, err, ports.ErrKeyNotFound)
	})
}

func TestKVRepo_EmptyKey(t *testing.T) {
	repo := NewKVRepo(nil, "")

	assert.Error(t, repo.Set(context.Background(), "", "v"))
	assert.NoError(t, repo.Remove(context.Background(), ""))
}
