package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/catalog-admin/config"
	"github.com/target/catalog-admin/internal/adapters/filestore"
	"github.com/target/catalog-admin/internal/adapters/memkv"
	redisadapter "github.com/target/catalog-admin/internal/adapters/redis"
	"github.com/target/catalog-admin/internal/data"
	"github.com/target/catalog-admin/internal/ports"
)

// StorageConfig contains configuration for the session persistence backend.
type StorageConfig struct {
	Storage  config.StorageConfig
	Postgres config.DBConfig
	Redis    config.RedisConfig
	Logger   *slog.Logger
}

// Storage is an opened persistence backend.
type Storage struct {
	KV      ports.KVStore
	Backend config.StorageBackend
	// DB is set for the postgres backend.
	DB *sql.DB

	closers []func() error
}

// Close releases backend connections.
func (s *Storage) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}

// OpenStorage opens the configured backend. The postgres backend applies
// migrations first when RunMigrationsOnStart is set.
func OpenStorage(ctx context.Context, cfg StorageConfig) (*Storage, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendMemory:
		return &Storage{KV: memkv.NewKVStore(), Backend: config.StorageBackendMemory}, nil

	case config.StorageBackendRedis:
		client, err := ConnectRedis(ctx, DatabaseConfig{RedisConfig: cfg.Redis, Logger: cfg.Logger})
		if err != nil {
			return nil, err
		}
		return &Storage{
			KV:      redisKV(client, cfg.Storage.KeyPrefix),
			Backend: config.StorageBackendRedis,
			closers: []func() error{client.Close},
		}, nil

	case config.StorageBackendPostgres:
		db, err := ConnectDB(ctx, DatabaseConfig{DBConfig: cfg.Postgres, Logger: cfg.Logger})
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrationsOnStart {
			if _, migErr := RunMigrations(ctx, db, cfg.Logger); migErr != nil {
				return nil, errors.Join(migErr, db.Close())
			}
		}
		return &Storage{
			KV:      data.NewKVRepo(db, cfg.Storage.KeyPrefix),
			Backend: config.StorageBackendPostgres,
			DB:      db,
			closers: []func() error{db.Close},
		}, nil

	case config.StorageBackendFile, "":
		return &Storage{KV: filestore.NewKVStore(cfg.Storage.FilePath), Backend: config.StorageBackendFile}, nil

	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

func redisKV(client redis.UniversalClient, prefix string) *redisadapter.KVStore {
	if prefix == "" {
		return redisadapter.NewKVStore(client)
	}
	return redisadapter.NewKVStoreWithPrefix(client, prefix)
}
