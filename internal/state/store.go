package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/attaboy/puzzlequest/internal/domain"
)

// ErrReadOnly is returned when a View transaction attempts a write.
var ErrReadOnly = errors.New("state: write in read-only transaction")

// Tx is a read-write view of the store inside one atomic transaction.
type Tx interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// KV is a key/value pair returned by Scan.
type KV struct {
	Key   string
	Value []byte
}

// Store runs transactions against the persisted state. Update commits every write made
// by fn if and only if fn returns nil; transactions never interleave.
type Store interface {
	Update(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
	// Scan returns up to limit pairs whose key starts with prefix, in key order.
	Scan(ctx context.Context, prefix string, limit int) ([]KV, error)
	Ping(ctx context.Context) error
}

// GetJSON loads and decodes the value at key. found is false when the key is absent.
func GetJSON[T any](ctx context.Context, tx Tx, key string) (v T, found bool, err error) {
	data, ok, err := tx.Get(ctx, key)
	if err != nil {
		return v, false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return v, false, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, true, nil
}

// PutJSON encodes v and stores it at key.
func PutJSON(ctx context.Context, tx Tx, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := tx.Put(ctx, key, data); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Has reports whether key exists.
func Has(ctx context.Context, tx Tx, key string) (bool, error) {
	_, ok, err := tx.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("has %s: %w", key, err)
	}
	return ok, nil
}

// NextSeq allocates the next value of a named counter, starting at 1.
func NextSeq(ctx context.Context, tx Tx, name string) (uint64, error) {
	key := SeqKey(name)
	data, ok, err := tx.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("read sequence %s: %w", name, err)
	}
	var cur uint64
	if ok {
		cur, err = strconv.ParseUint(string(data), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse sequence %s: %w", name, err)
		}
	}
	next := cur + 1
	if err := tx.Put(ctx, key, []byte(strconv.FormatUint(next, 10))); err != nil {
		return 0, fmt.Errorf("write sequence %s: %w", name, err)
	}
	return next, nil
}

// Emit stages an outbox event in the same transaction as the state change.
func Emit(ctx context.Context, tx Tx, draft domain.OutboxDraft) error {
	seq, err := NextSeq(ctx, tx, "outbox")
	if err != nil {
		return err
	}
	return PutJSON(ctx, tx, OutboxKey(seq), draft)
}
