package guard

import (
	"context"
	"sync"
	"time"

	"github.com/attaboy/puzzlequest/internal/domain"
	"github.com/jonboulle/clockwork"
)

// IdempotencyGuard deduplicates requests by Idempotency-Key within a retention window.
type IdempotencyGuard struct {
	mu    sync.Mutex
	clock clockwork.Clock
	ttl   time.Duration
	seen  map[string]time.Time
}

// NewIdempotencyGuard creates an in-memory guard. A zero ttl keeps keys forever.
func NewIdempotencyGuard(ttl time.Duration, clock clockwork.Clock) *IdempotencyGuard {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &IdempotencyGuard{
		clock: clock,
		ttl:   ttl,
		seen:  make(map[string]time.Time),
	}
}

// Check records key and reports whether it was already seen.
func (ig *IdempotencyGuard) Check(_ context.Context, key string) domain.GuardResult {
	if key == "" {
		return domain.GuardResult{Allowed: true}
	}

	ig.mu.Lock()
	defer ig.mu.Unlock()

	now := ig.clock.Now()
	if at, ok := ig.seen[key]; ok && (ig.ttl == 0 || now.Sub(at) < ig.ttl) {
		return domain.GuardResult{
			Allowed: false,
			Reason:  "duplicate request: idempotency key already processed",
			Guard:   "idempotency",
		}
	}

	ig.seen[key] = now
	return domain.GuardResult{Allowed: true}
}

// Remove forgets key so a failed request can be retried.
func (ig *IdempotencyGuard) Remove(key string) {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	delete(ig.seen, key)
}
