package executor

import (
	"sync"
	"time"
)

// Cooldown prevents the same pool from being traded more than once within a
// configurable window. The detector rediscovers a surviving opportunity every
// cycle, so without this the consumer would re-enter the same pool on every
// tick. It is safe for concurrent use.
type Cooldown struct {
	traded map[string]time.Time // poolID -> last execution time
	ttl    time.Duration
	mu     sync.Mutex
}

// NewCooldown creates a Cooldown that suppresses re-execution of a pool seen
// within the given ttl.
func NewCooldown(ttl time.Duration) *Cooldown {
	return &Cooldown{
		traded: make(map[string]time.Time),
		ttl:    ttl,
	}
}

// ShouldSkip returns true if poolID was executed within the TTL window. If
// the pool is not on cooldown it is recorded and false is returned.
func (c *Cooldown) ShouldSkip(poolID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if last, ok := c.traded[poolID]; ok {
		if now.Sub(last) < c.ttl {
			return true
		}
	}

	c.traded[poolID] = now
	return false
}

// Cleanup removes entries that have aged past the TTL. Call periodically to
// keep the map bounded.
func (c *Cooldown) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for id, ts := range c.traded {
		if now.Sub(ts) >= c.ttl {
			delete(c.traded, id)
		}
	}
}
