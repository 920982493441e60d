package state

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemStore is an in-process Store. Writes are buffered per transaction and applied
// only when the callback succeeds.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

type memTx struct {
	base     map[string][]byte
	writes   map[string][]byte
	deletes  map[string]struct{}
	readOnly bool
}

func (t *memTx) Get(_ context.Context, key string) ([]byte, bool, error) {
	if _, gone := t.deletes[key]; gone {
		return nil, false, nil
	}
	if v, ok := t.writes[key]; ok {
		return clone(v), true, nil
	}
	v, ok := t.base[key]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

func (t *memTx) Put(_ context.Context, key string, value []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}
	delete(t.deletes, key)
	t.writes[key] = clone(value)
	return nil
}

func (t *memTx) Delete(_ context.Context, key string) error {
	if t.readOnly {
		return ErrReadOnly
	}
	delete(t.writes, key)
	t.deletes[key] = struct{}{}
	return nil
}

// Update runs fn with exclusive access and commits its writes if it returns nil.
func (s *MemStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		base:    s.data,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for k := range tx.deletes {
		delete(s.data, k)
	}
	for k, v := range tx.writes {
		s.data[k] = v
	}
	return nil
}

// View runs fn against a read-only snapshot.
func (s *MemStore) View(_ context.Context, fn func(tx Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memTx{base: s.data, readOnly: true})
}

// Scan returns up to limit pairs with the given key prefix in key order.
func (s *MemStore) Scan(_ context.Context, prefix string, limit int) ([]KV, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0)
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	out := make([]KV, 0, len(keys))
	for _, k := range keys {
		out = append(out, KV{Key: k, Value: clone(s.data[k])})
	}
	return out, nil
}

// Ping always succeeds.
func (s *MemStore) Ping(context.Context) error { return nil }

// Len returns the number of stored keys.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
