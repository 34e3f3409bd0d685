package weather

import (
	"fmt"
	"sync"
	"time"

	"github.com/trailgems/discovery-cli/internal/model"
)

// DefaultCacheTTL is how long a cached weather record stays fresh.
const DefaultCacheTTL = time.Hour

// Cache memoizes weather lookups by coordinate pair. Keys round to four
// decimal places (roughly 11 meters) so nearby gems share an entry. Expiry is
// lazy: stale entries are replaced on the next lookup, never swept.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	record    model.WeatherRecord
	fetchedAt time.Time
}

// NewCache creates a cache with the given TTL. A zero TTL gets the default.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// cacheKey rounds the pair to four decimal places.
func cacheKey(lat, lng float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lng)
}

// Get returns the cached record for the pair if present and fresh.
func (c *Cache) Get(lat, lng float64) (model.WeatherRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[cacheKey(lat, lng)]
	if !ok {
		return model.WeatherRecord{}, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl {
		delete(c.entries, cacheKey(lat, lng))
		return model.WeatherRecord{}, false
	}
	return entry.record, true
}

// Put stores a record for the pair, stamping it with the current time.
func (c *Cache) Put(lat, lng float64, record model.WeatherRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(lat, lng)] = cacheEntry{record: record, fetchedAt: c.now()}
}

// Len reports how many entries are held, fresh or stale.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
