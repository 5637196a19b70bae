// internal/api/cache.go
package api

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"housing-portal/internal/common/metrics"
)

// responseCache keeps decoded GET response bodies for a short window so
// repeated reads of slow-moving endpoints stay local. Mutating calls and
// logout invalidate the affected entries.
type responseCache struct {
	store *gocache.Cache
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		store: gocache.New(ttl, 2*ttl),
	}
}

func (c *responseCache) Get(path string) ([]byte, bool) {
	v, ok := c.store.Get(path)
	if !ok {
		metrics.CacheHitsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.CacheHitsTotal.WithLabelValues("hit").Inc()
	return v.([]byte), true
}

func (c *responseCache) Set(path string, body []byte) {
	c.store.SetDefault(path, body)
}

func (c *responseCache) Invalidate(path string) {
	c.store.Delete(path)
}

func (c *responseCache) Flush() {
	c.store.Flush()
}
