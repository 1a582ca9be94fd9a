package shoutout

import (
	"daily-shoutout/internal/types"
	"sync"
	"time"
)

// Cache holds the shoutout computed for a single date
type Cache struct {
	mu         sync.RWMutex
	record     *types.Shoutout
	date       string
	computedAt time.Time
}

func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached record if it was computed for date
func (c *Cache) Get(date string) (types.Shoutout, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.record == nil || c.date != date {
		return types.Shoutout{}, false
	}
	return *c.record, true
}

// Set replaces the slot with record for date
func (c *Cache) Set(date string, record types.Shoutout, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.record = &record
	c.date = date
	c.computedAt = now
}

// Snapshot returns the slot contents regardless of date
func (c *Cache) Snapshot() (record *types.Shoutout, date string, computedAt time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.record != nil {
		r := *c.record
		record = &r
	}
	return record, c.date, c.computedAt
}

// Reset empties the slot
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.record = nil
	c.date = ""
	c.computedAt = time.Time{}
}
