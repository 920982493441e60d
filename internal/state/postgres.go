package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// stateLockKey serializes all platform transactions (pg_advisory_xact_lock).
const stateLockKey int64 = 0x70757a7a6c65

// DBTX abstracts pgx.Tx and pgxpool.Pool so queries work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PgStore persists state in the kv_state table.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore wraps an open pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

type pgTx struct {
	db       DBTX
	readOnly bool
}

func (t *pgTx) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := t.db.QueryRow(ctx, `SELECT value FROM kv_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

func (t *pgTx) Put(ctx context.Context, key string, value []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}
	_, err := t.db.Exec(ctx, `
		INSERT INTO kv_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (t *pgTx) Delete(ctx context.Context, key string) error {
	if t.readOnly {
		return ErrReadOnly
	}
	if _, err := t.db.Exec(ctx, `DELETE FROM kv_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Writers queue on the advisory lock, so statements after it must see every commit
// made while they waited. A serializable snapshot would be taken before the lock
// is granted and fail with 40001 once the queue drains.
var (
	updateTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	viewTxOptions   = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
)

// Update runs fn in a read-committed transaction holding the platform advisory lock.
func (s *PgStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, updateTxOptions, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, stateLockKey); err != nil {
			return fmt.Errorf("acquire state lock: %w", err)
		}
		return fn(&pgTx{db: tx})
	})
}

// View runs fn in a read-only transaction over one snapshot.
func (s *PgStore) View(ctx context.Context, fn func(tx Tx) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, viewTxOptions, func(tx pgx.Tx) error {
		return fn(&pgTx{db: tx, readOnly: true})
	})
}

// Scan returns up to limit pairs with the given key prefix in key order.
func (s *PgStore) Scan(ctx context.Context, prefix string, limit int) ([]KV, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.pool.Query(ctx, `
		SELECT key, value FROM kv_state
		WHERE left(key, length($1)) = $1
		ORDER BY key ASC
		LIMIT $2`, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", prefix, err)
	}
	defer rows.Close()

	var out []KV
	for rows.Next() {
		var kv KV
		if err := rows.Scan(&kv.Key, &kv.Value); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, kv)
	}
	return out, rows.Err()
}

// Ping checks database reachability.
func (s *PgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
