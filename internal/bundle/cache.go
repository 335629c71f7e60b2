package bundle

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache memoizes parsed bundle contents between import invocations.
// It is read-through and advisory: correctness never depends on a hit,
// only the cost of re-parsing large YAML trees does.
type Cache interface {
	// Remember returns the cached value for key, or runs producer, caches
	// its result for ttl, and returns it. A producer error is returned
	// as-is and nothing is cached.
	Remember(key string, ttl time.Duration, producer func() (any, error)) (any, error)
}

// MemoryCache is a Cache over an in-process go-cache store.
type MemoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache creates a MemoryCache. Expired entries are swept every
// hour; parsed bundles are large, so they should not linger.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{c: gocache.New(gocache.NoExpiration, time.Hour)}
}

// Remember implements Cache.
func (m *MemoryCache) Remember(key string, ttl time.Duration, producer func() (any, error)) (any, error) {
	if v, ok := m.c.Get(key); ok {
		return v, nil
	}

	v, err := producer()
	if err != nil {
		return nil, err
	}

	m.c.Set(key, v, ttl)
	return v, nil
}

// NoopCache always invokes the producer. Used in tests so import logic is
// exercised without memoization.
type NoopCache struct{}

// Remember implements Cache.
func (NoopCache) Remember(_ string, _ time.Duration, producer func() (any, error)) (any, error) {
	return producer()
}
