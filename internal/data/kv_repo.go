package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/target/catalog-admin/internal/data/pgxutil"
	apperrors "github.com/target/catalog-admin/internal/errors"
	"github.com/target/catalog-admin/internal/ports"
)

var _ ports.KVStore = (*KVRepo)(nil)

// KVRepo persists session values in the client_kv table. Keys are
// namespaced by Prefix so several profiles can share one database.
type KVRepo struct {
	DB     *sql.DB
	Prefix string
}

// NewKVRepo creates a new KVRepo.
func NewKVRepo(db *sql.DB, prefix string) *KVRepo {
	return &KVRepo{DB: db, Prefix: prefix}
}

// Get returns the value for key or ports.ErrKeyNotFound. A missing
// client_kv table reads as an empty store.
func (r *KVRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `SELECT value FROM client_kv WHERE key = $1`, r.Prefix+key).Scan(&value)
	})
	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, pgx.ErrNoRows), isUndefinedTable(err):
		return "", ports.ErrKeyNotFound
	default:
		return "", fmt.Errorf("kv get %s: %w", key, apperrors.MapDBError(err))
	}
}

// Set upserts value under key.
func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("kv set: key cannot be empty")
	}
	const q = `
		INSERT INTO client_kv (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if _, err := r.DB.ExecContext(ctx, q, r.Prefix+key, value); err != nil {
		return fmt.Errorf("kv set %s: %w", key, apperrors.MapDBError(err))
	}
	return nil
}

// Remove deletes key. Removing a missing key, or from a missing table, is
// not an error.
func (r *KVRepo) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM client_kv WHERE key = $1`, r.Prefix+key); err != nil {
		if isUndefinedTable(err) {
			return nil
		}
		return fmt.Errorf("kv remove %s: %w", key, apperrors.MapDBError(err))
	}
	return nil
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable
}
