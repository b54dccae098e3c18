package server

import (
	"context"
	"sync"
	"time"

	"github.com/mj1618/droid-a11y/internal/automation"
	"github.com/mj1618/droid-a11y/internal/clock"
)

type dumpEntry struct {
	snap automation.Snapshot
	at   time.Time
}

// DumpCache keeps recent tree dumps keyed by node cap. Any tool that
// drives the device invalidates it.
type DumpCache struct {
	mu      sync.Mutex
	entries map[int]dumpEntry
	ttl     time.Duration
	clock   clock.Clock
}

// NewDumpCache creates a cache. A ttl of 0 disables caching.
func NewDumpCache(ttl time.Duration, c clock.Clock) *DumpCache {
	if c == nil {
		c = clock.Real{}
	}
	return &DumpCache{
		entries: make(map[int]dumpEntry),
		ttl:     ttl,
		clock:   c,
	}
}

// Get returns a fresh cached dump for maxNodes or loads and stores a new
// one. hit reports whether the cache answered.
func (c *DumpCache) Get(ctx context.Context, maxNodes int, load func(context.Context, int) (automation.Snapshot, error)) (snap automation.Snapshot, hit bool, err error) {
	if c.ttl > 0 {
		c.mu.Lock()
		if e, ok := c.entries[maxNodes]; ok && c.clock.Now().Sub(e.at) < c.ttl {
			c.mu.Unlock()
			return e.snap, true, nil
		}
		c.mu.Unlock()
	}

	snap, err = load(ctx, maxNodes)
	if err != nil {
		return automation.Snapshot{}, false, err
	}
	if c.ttl > 0 {
		c.mu.Lock()
		c.entries[maxNodes] = dumpEntry{snap: snap, at: c.clock.Now()}
		c.mu.Unlock()
	}
	return snap, false, nil
}

// Invalidate drops every cached dump.
func (c *DumpCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[int]dumpEntry)
	c.mu.Unlock()
}
