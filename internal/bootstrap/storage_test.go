package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/catalog-admin/config"
	"github.com/target/catalog-admin/internal/adapters/filestore"
	"github.com/target/catalog-admin/internal/adapters/memkv"
	redisadapter "github.com/target/catalog-admin/internal/adapters/redis"
)

func TestOpenStorage_Memory(t *testing.T) {
	st, err := OpenStorage(context.Background(), StorageConfig{
		Storage: config.StorageConfig{Backend: config.StorageBackendMemory},
	})

	require.NoError(t, err)
	assert.IsType(t, &memkv.KVStore{}, st.KV)
	assert.NoError(t, st.Close())
}

func TestOpenStorage_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	st, err := OpenStorage(context.Background(), StorageConfig{
		Storage: config.StorageConfig{Backend: config.StorageBackendFile, FilePath: path},
	})

	require.NoError(t, err)
	fs, ok := st.KV.(*filestore.KVStore)
	require.True(t, ok)
	assert.Equal(t, path, fs.Path())
}

func TestOpenStorage_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	st, err := OpenStorage(context.Background(), StorageConfig{
		Storage: config.StorageConfig{Backend: config.StorageBackendRedis, KeyPrefix: "p:"},
		Redis:   config.RedisConfig{URI: mr.Addr()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	assert.IsType(t, &redisadapter.KVStore{}, st.KV)
	require.NoError(t, st.KV.Set(context.Background(), "token", "A1"))
	assert.True(t, mr.Exists("p:token"))
}

func TestOpenStorage_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := OpenStorage(context.Background(), StorageConfig{
		Storage: config.StorageConfig{Backend: config.StorageBackendRedis},
		Redis:   config.RedisConfig{URI: addr},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis")
}

func TestOpenStorage_Unsupported(t *testing.T) {
	_, err := OpenStorage(context.Background(), StorageConfig{
		Storage: config.StorageConfig{Backend: "s3"},
	})

	require.Error(t, err)
}
