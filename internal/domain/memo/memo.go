// Package memo provides a bounded in-memory cache of scoring results.
//
// Rescoring always runs over the full accumulated user text, so the same key
// recurs whenever no new user turn arrived; caching the snapshot keeps
// repeated score reads cheap and deterministic even when the semantic
// collaborator is not.
package memo

import (
	"sync"

	"github.com/okian/parley/internal/domain/scoring"
)

const defaultMaxEntries = 1024

// Option applies a configuration option to the cache.
type Option func(*Cache)

// WithMaxEntries bounds the number of cached results. Zero or negative means
// unbounded.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		c.maxEntries = n
	}
}

// Cache implements scoring.Memo with insertion-order eviction: when the
// bound is reached, the oldest entry is dropped.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]scoring.Result
	order      []string
	maxEntries int
}

// New creates a cache with configuration options.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]scoring.Result),
		maxEntries: defaultMaxEntries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached result for key, if any.
func (c *Cache) Get(key string) (scoring.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.entries[key]
	return res, ok
}

// Put stores a result, evicting the oldest entry when over the bound.
func (c *Cache) Put(key string, res scoring.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = res

	for c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
