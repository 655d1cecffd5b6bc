package listing

import (
	"context"
	"path/filepath"
	"slices"
	"sync"

	"github.com/yndnr/sumconf-go/internal/telemetry/metric"
	"github.com/yndnr/sumconf-go/pkg/cmap"
)

// Cache memoizes directory listings keyed by cleaned directory path.
type Cache struct {
	entries *cmap.Map[[]string]
	lister  Lister
	metrics *metric.Registry
}

// Option configures the Cache.
type Option func(*Cache)

// WithLister replaces the filesystem lister, mostly for tests.
func WithLister(l Lister) Option {
	return func(c *Cache) {
		c.lister = l
	}
}

// WithMetrics counts hits and misses in r.
func WithMetrics(r *metric.Registry) Option {
	return func(c *Cache) {
		c.metrics = r
	}
}

// New creates an empty listing cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: cmap.New[[]string](),
		lister:  OSLister{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the entry names of dir, listing it on a miss.
//
// The returned slice is shared with the cache and must not be modified.
// Two goroutines missing on the same directory both list it; the last
// write wins, which is harmless since both hold the same names.
func (c *Cache) Get(ctx context.Context, dir string) ([]string, error) {
	key := filepath.Clean(dir)

	if names, ok := c.entries.Get(key); ok {
		c.metrics.CacheHit()
		return names, nil
	}

	c.metrics.CacheMiss()
	names, err := c.lister.List(ctx, key)
	if err != nil {
		return nil, err
	}
	names = slices.Clip(names)
	c.entries.Set(key, names)
	return names, nil
}

// Contains reports whether the listing of dir is cached.
func (c *Cache) Contains(dir string) bool {
	return c.entries.Has(filepath.Clean(dir))
}

// Invalidate drops the listing of a single directory.
func (c *Cache) Invalidate(dir string) {
	c.entries.Delete(filepath.Clean(dir))
}

// Clear drops every cached listing.
func (c *Cache) Clear() {
	c.entries.Clear()
}

// Len returns the number of cached directories.
func (c *Cache) Len() int {
	return c.entries.Count()
}

// Collector returns a Prometheus collector reporting the cache size.
func (c *Cache) Collector() *metric.Collector {
	return metric.NewCollector(c.Len)
}

var (
	defaultOnce  sync.Once
	defaultCache *Cache
)

// Default returns the process-wide cache used when a caller supplies none.
func Default() *Cache {
	defaultOnce.Do(func() {
		defaultCache = New()
	})
	return defaultCache
}

// ClearDefault drops every listing held by the process-wide cache.
func ClearDefault() {
	Default().Clear()
}
