package credentials

import (
	"sync"
	"time"
)

// PropertyCache is a bounded TTL cache mapping a credential ID to the
// Search Console properties it is verified against. Each credential's
// property listing is an extra round trip to the Search Console API, so
// the authoritative probe consults this before calling out; entries
// older than ttl are treated as absent rather than evicted eagerly.
type PropertyCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	properties []string
	expiresAt  time.Time
}

func NewPropertyCache(ttl time.Duration, maxSize int) *PropertyCache {
	return &PropertyCache{
		ttl:     ttl,
		maxSize: maxSize,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *PropertyCache) Get(credentialID string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[credentialID]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.properties, true
}

func (c *PropertyCache) Set(credentialID string, properties []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[credentialID] = cacheEntry{
		properties: properties,
		expiresAt:  c.now().Add(c.ttl),
	}
}

// evictOldest drops one expired entry if one exists, else an arbitrary
// entry. Go map iteration order is randomized, which is good enough for
// a cache this small — no LRU bookkeeping needed.
func (c *PropertyCache) evictOldest() {
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			return
		}
	}
	for k := range c.entries {
		delete(c.entries, k)
		return
	}
}
