package engine

import "sync"

// Cache memoizes evaluations by canonical position and depth. Reads are
// concurrent; racing writers on the same key overwrite each other, which is
// harmless because evaluations are deterministic for a given engine+depth.
type Cache struct {
	mu sync.RWMutex
	m  map[string]*Evaluation
}

// NewCache returns an empty evaluation cache.
func NewCache() *Cache {
	return &Cache{m: make(map[string]*Evaluation)}
}

// Get returns the cached evaluation for a (fen, depth) pair.
func (c *Cache) Get(fen string, depth int) (*Evaluation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ev, ok := c.m[cacheKey(fen, depth)]
	return ev, ok
}

// Put stores an evaluation.
func (c *Cache) Put(fen string, depth int, ev *Evaluation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[cacheKey(fen, depth)] = ev
}

// Len returns the number of cached positions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
