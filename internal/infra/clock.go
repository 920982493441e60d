package infra

import (
	"sync"

	"github.com/jonboulle/clockwork"
)

// LedgerClock supplies the ledger timestamp in Unix seconds. Successive readings
// never decrease, even if the wall clock steps backwards.
type LedgerClock struct {
	mu    sync.Mutex
	clock clockwork.Clock
	last  uint64
}

// NewLedgerClock wraps a clockwork clock; nil uses the real clock.
func NewLedgerClock(clock clockwork.Clock) *LedgerClock {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LedgerClock{clock: clock}
}

// Now returns the current ledger timestamp.
func (c *LedgerClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var now uint64
	if unix := c.clock.Now().Unix(); unix > 0 {
		now = uint64(unix)
	}
	if now < c.last {
		return c.last
	}
	c.last = now
	return now
}

// Clock exposes the underlying clock for timers.
func (c *LedgerClock) Clock() clockwork.Clock { return c.clock }
