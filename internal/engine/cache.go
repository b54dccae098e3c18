package engine

import (
	"sync"
	"time"
)

// titleCache holds the last extraction. The list and its capture time are
// always replaced together.
type titleCache struct {
	mu   sync.Mutex
	hits []TitleHit
	at   time.Time
}

// fresh returns a copy of the cached hits if they are non-empty and younger
// than ttl at now.
func (c *titleCache) fresh(now time.Time, ttl time.Duration) ([]TitleHit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.hits) == 0 || now.Sub(c.at) >= ttl {
		return nil, false
	}
	return cloneHits(c.hits), true
}

func (c *titleCache) store(hits []TitleHit, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits = cloneHits(hits)
	c.at = at
}

func (c *titleCache) snapshot() ([]TitleHit, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneHits(c.hits), c.at
}

func cloneHits(hits []TitleHit) []TitleHit {
	if hits == nil {
		return nil
	}
	out := make([]TitleHit, len(hits))
	copy(out, hits)
	return out
}

// CachedTitles returns the cached hits and their capture time without
// refreshing.
func (e *Engine) CachedTitles() ([]TitleHit, time.Time) {
	return e.cache.snapshot()
}

// InvalidateTitles empties the cache so the next read re-extracts.
func (e *Engine) InvalidateTitles() {
	e.cache.store(nil, time.Time{})
}
