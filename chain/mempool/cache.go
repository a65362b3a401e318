package mempool

import (
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/clock"
)

// cache holds the last fee estimates for a limited time.
type cache struct {
	clock clock.Clock
	ttl   time.Duration

	fees      *FeeEstimates
	expiresAt time.Time

	mu sync.RWMutex
}

// newCache creates a new cache.
func newCache(clk clock.Clock, ttl time.Duration) *cache {
	return &cache{
		clock: clk,
		ttl:   ttl,
	}
}

// get returns the cached estimates if still valid.
func (c *cache) get() (*FeeEstimates, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.fees == nil || !c.clock.Now().Before(c.expiresAt) {
		return nil, false
	}

	fees := *c.fees
	return &fees, true
}

// set caches fresh estimates.
func (c *cache) set(fees *FeeEstimates) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *fees
	c.fees = &cp
	c.expiresAt = c.clock.Now().Add(c.ttl)
}
