package projection

import (
	"sync"

	"github.com/nikbrunner/shelf/internal/model"
)

// cacheKey identifies a projection: the same snapshot version and query
// always produce the same output.
type cacheKey struct {
	version uint64
	query   model.ViewQuery
}

// Cache memoizes the most recent projection so re-rendering on every
// keystroke or frame only recomputes when the inputs change.
type Cache struct {
	engine *Engine

	mu     sync.Mutex
	valid  bool
	key    cacheKey
	result []model.Bookmark
	hits   int
	misses int
}

// NewCache creates a Cache around engine.
func NewCache(engine *Engine) *Cache {
	return &Cache{engine: engine}
}

// Project returns the memoized projection for (snap.Version, q).
// Callers must not modify the returned slice.
func (c *Cache) Project(snap *model.Snapshot, q model.ViewQuery) []model.Bookmark {
	key := cacheKey{version: snap.Version, query: q}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.key == key {
		c.hits++
		return c.result
	}

	c.misses++
	c.result = c.engine.Project(snap, q)
	c.key = key
	c.valid = true
	return c.result
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
