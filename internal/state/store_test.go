package state

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// --- MemStore Tests ---

func TestMemStore_CommitOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	err := s.Update(ctx, func(tx Tx) error {
		return PutJSON(ctx, tx, "rec:1", record{Name: "a", Count: 1})
	})
	require.NoError(t, err)

	err = s.View(ctx, func(tx Tx) error {
		got, found, err := GetJSON[record](ctx, tx, "rec:1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, record{Name: "a", Count: 1}, got)
		return nil
	})
	require.NoError(t, err)
}

func TestMemStore_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.Update(ctx, func(tx Tx) error {
		return tx.Put(ctx, "keep", []byte("1"))
	}))

	boom := errors.New("boom")
	err := s.Update(ctx, func(tx Tx) error {
		require.NoError(t, tx.Put(ctx, "new", []byte("x")))
		require.NoError(t, tx.Put(ctx, "keep", []byte("2")))
		require.NoError(t, tx.Delete(ctx, "keep"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, s.View(ctx, func(tx Tx) error {
		v, ok, _ := tx.Get(ctx, "keep")
		assert.True(t, ok)
		assert.Equal(t, "1", string(v))
		ok, _ = Has(ctx, tx, "new")
		assert.False(t, ok)
		return nil
	}))
	assert.Equal(t, 1, s.Len())
}

func TestMemStore_ReadYourWrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.Update(ctx, func(tx Tx) error {
		require.NoError(t, tx.Put(ctx, "k", []byte("v")))
		v, ok, err := tx.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", string(v))

		require.NoError(t, tx.Delete(ctx, "k"))
		_, ok, _ = tx.Get(ctx, "k")
		assert.False(t, ok)
		return nil
	}))
	assert.Equal(t, 0, s.Len())
}

func TestMemStore_ViewIsReadOnly(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	err := s.View(ctx, func(tx Tx) error {
		return tx.Put(ctx, "k", []byte("v"))
	})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestMemStore_Scan(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.Update(ctx, func(tx Tx) error {
		for _, k := range []string{OutboxKey(3), OutboxKey(1), "other", OutboxKey(2)} {
			require.NoError(t, tx.Put(ctx, k, []byte(k)))
		}
		return nil
	}))

	kvs, err := s.Scan(ctx, OutboxPrefix, 2)
	require.NoError(t, err)
	require.Len(t, kvs, 2)
	assert.Equal(t, OutboxKey(1), kvs[0].Key)
	assert.Equal(t, OutboxKey(2), kvs[1].Key)
}

func TestMemStore_ConcurrentUpdatesSerialize(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, func(tx Tx) error {
				_, err := NextSeq(ctx, tx, "counter")
				return err
			})
		}()
	}
	wg.Wait()

	require.NoError(t, s.Update(ctx, func(tx Tx) error {
		next, err := NextSeq(ctx, tx, "counter")
		require.NoError(t, err)
		assert.Equal(t, uint64(51), next)
		return nil
	}))
}

// --- Helper Tests ---

func TestNextSeqStartsAtOne(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.Update(ctx, func(tx Tx) error {
		a, err := NextSeq(ctx, tx, "events")
		require.NoError(t, err)
		b, err := NextSeq(ctx, tx, "events")
		require.NoError(t, err)
		other, err := NextSeq(ctx, tx, "tokens")
		require.NoError(t, err)
		assert.Equal(t, uint64(1), a)
		assert.Equal(t, uint64(2), b)
		assert.Equal(t, uint64(1), other)
		return nil
	}))
}

func TestEmitStagesOutboxInOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	entry := domain.LedgerEntry{Account: "alice", Kind: domain.EntryCredit, Amount: domain.MustAmount(3)}
	require.NoError(t, s.Update(ctx, func(tx Tx) error {
		require.NoError(t, Emit(ctx, tx, domain.NewLedgerEntryEvent(entry)))
		return Emit(ctx, tx, domain.NewLedgerEntryEvent(entry))
	}))

	kvs, err := s.Scan(ctx, OutboxPrefix, 0)
	require.NoError(t, err)
	require.Len(t, kvs, 2)
	assert.Equal(t, OutboxKey(1), kvs[0].Key)
}

func TestGetJSONMissingKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.View(ctx, func(tx Tx) error {
		_, found, err := GetJSON[record](ctx, tx, "nope")
		require.NoError(t, err)
		assert.False(t, found)
		return nil
	}))
}

func TestGetJSONCorruptValue(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.Update(ctx, func(tx Tx) error {
		return tx.Put(ctx, "bad", []byte("{"))
	}))
	err := s.View(ctx, func(tx Tx) error {
		_, _, err := GetJSON[record](ctx, tx, "bad")
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode bad")
}

func TestKeysAreDistinct(t *testing.T) {
	assert.Equal(t, "progress:alice:7", ProgressKey("alice", 7))
	assert.Equal(t, "eventprogress:2:alice:7", EventProgressKey(2, "alice", 7))
	assert.Equal(t, "eventclaim:2:alice", EventClaimKey(2, "alice"))
	assert.NotEqual(t, MintedKey("alice", 1), ProgressKey("alice", 1))
	assert.Less(t, OutboxKey(9), OutboxKey(10), "outbox keys sort numerically")
	assert.Less(t, JournalKey(9), JournalKey(10))
}

// --- PgStore Tests ---

func TestPgStore_TxOptions(t *testing.T) {
	assert.Equal(t, pgx.ReadCommitted, updateTxOptions.IsoLevel, "writers rely on the advisory lock, not a snapshot")
	assert.Equal(t, pgx.TxAccessMode(""), updateTxOptions.AccessMode)
	assert.Equal(t, pgx.RepeatableRead, viewTxOptions.IsoLevel, "multi-key reads see one snapshot")
	assert.Equal(t, pgx.ReadOnly, viewTxOptions.AccessMode)
}
