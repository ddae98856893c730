package memory

import (
	"sync"
	"time"

	"github.com/Reshigan/SalesSync-sub016/module/core/domain"
	"github.com/Reshigan/SalesSync-sub016/module/core/internal/repository/cache"
)

var _ cache.LocationCache = (*LocationCache)(nil)

const defaultTTL = time.Hour

// LocationCache is a process-wide, time-bounded store of last-known
// agent locations. Safe for concurrent use; per-key last-write-wins.
type LocationCache struct {
	mu      sync.Mutex
	entries map[cache.Key]entry
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	reading  domain.LocationReading
	cachedAt time.Time
}

func NewLocationCache() *LocationCache {
	return &LocationCache{
		entries: make(map[cache.Key]entry),
		ttl:     defaultTTL,
		now:     time.Now,
	}
}

// NewLocationCacheWithClock allows tests to control expiry.
func NewLocationCacheWithClock(ttl time.Duration, now func() time.Time) *LocationCache {
	return &LocationCache{
		entries: make(map[cache.Key]entry),
		ttl:     ttl,
		now:     now,
	}
}

func (c *LocationCache) Put(key cache.Key, reading domain.LocationReading) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{reading: reading, cachedAt: c.now()}
}

// Get returns the cached reading, marked IsCached, if it is younger
// than the TTL. Expired entries are evicted and reported as a miss.
func (c *LocationCache) Get(key cache.Key) (domain.LocationReading, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.LocationReading{}, false
	}
	if c.now().Sub(e.cachedAt) >= c.ttl {
		delete(c.entries, key)
		return domain.LocationReading{}, false
	}

	reading := e.reading
	reading.IsCached = true
	return reading, true
}
