package places

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/venue-discovery/internal/models"
)

// Cache is a small in-memory TTL cache in front of a Provider, keyed
// by origin/radius/category. Nearby searches from the same spot repeat
// constantly while a user pans a map.
type Cache struct {
	next Provider
	ttl  time.Duration

	mu    sync.RWMutex
	store map[string]cacheEntry
}

type cacheEntry struct {
	venues []models.Venue
	ts     time.Time
}

func NewCache(next Provider, ttl time.Duration) *Cache {
	return &Cache{next: next, ttl: ttl, store: make(map[string]cacheEntry)}
}

func searchKey(origin models.Coordinate, radiusMeters float64, category string) string {
	return fmt.Sprintf("%.6f,%.6f|%.0f|%s", origin.Lat, origin.Lon, radiusMeters, category)
}

func (c *Cache) Search(ctx context.Context, origin models.Coordinate, radiusMeters float64, category string) ([]models.Venue, error) {
	k := searchKey(origin, radiusMeters, category)
	c.mu.RLock()
	e, ok := c.store[k]
	c.mu.RUnlock()
	if ok && time.Since(e.ts) <= c.ttl {
		return e.venues, nil
	}
	if ok {
		c.mu.Lock()
		delete(c.store, k)
		c.mu.Unlock()
	}
	venues, err := c.next.Search(ctx, origin, radiusMeters, category)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.store[k] = cacheEntry{venues: venues, ts: time.Now()}
	c.mu.Unlock()
	return venues, nil
}
