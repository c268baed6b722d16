package cache

import "time"

// SetClock replaces the clock used for expiration
func (c *Cache[V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Purge removes expired entries immediately
func (c *Cache[V]) Purge() {
	c.purge()
}
