package projection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("projection: cache miss")

// Store is the interface for projection persistence (Redis-backed in production).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// SetIfNewer writes value unless the key already carries a higher version.
	// Versions outlive Delete, so an invalidated key still rejects older writes.
	SetIfNewer(ctx context.Context, key string, value []byte, version uint64, ttl time.Duration) (bool, error)
}

// InMemoryStore is a simple in-memory projection store for development/testing.
type InMemoryStore struct {
	mu       sync.Mutex
	data     map[string]entry
	versions map[string]uint64
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// NewInMemoryStore creates a new in-memory projection store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string]entry), versions: make(map[string]uint64)}
}

func (s *InMemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMiss, key)
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(s.data, key)
		return nil, fmt.Errorf("%w: %s expired", ErrMiss, key)
	}
	return e.value, nil
}

func (s *InMemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.data[key] = entry{value: value, expiresAt: exp}
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) SetIfNewer(_ context.Context, key string, value []byte, version uint64, ttl time.Duration) (bool, error) {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.versions[key]; ok && cur > version {
		return false, nil
	}
	s.versions[key] = version
	s.data[key] = entry{value: value, expiresAt: exp}
	return true, nil
}

func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// SetJSON is a convenience helper to serialize and store a value.
func SetJSON(ctx context.Context, store Store, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal projection: %w", err)
	}
	return store.Set(ctx, key, data, ttl)
}

// GetJSON is a convenience helper to retrieve and deserialize a value.
func GetJSON(ctx context.Context, store Store, key string, dest interface{}) error {
	data, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
