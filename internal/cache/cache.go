// Package cache provides the process-wide TTL response cache.
// A single instance is constructed at startup and handed to each service
// that memoizes upstream results; there is no package-level state.
package cache

import (
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"
)

// Cache memoizes opaque values with a per-entry TTL. Entries are lazily
// considered expired once their deadline passes regardless of physical
// eviction timing.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}

// Key joins the parts of a cache key. Services build keys from their
// component name plus the request parameters.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

const (
	numCounters = 10_000
	maxCost     = 1 << 24
	bufferItems = 64
)

// Ristretto is the production Cache backed by a ristretto TTL cache.
type Ristretto struct {
	inner *ristretto.Cache
}

// NewRistretto builds the cache with a fixed small footprint; the workload
// is a handful of memoized API responses, not a hot path.
func NewRistretto() (*Ristretto, error) {
	inner, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: bufferItems,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ristretto cache")
	}

	return &Ristretto{inner: inner}, nil
}

func (c *Ristretto) Get(key string) (any, bool) {
	return c.inner.Get(key)
}

// Set stores the value and waits for admission so that a subsequent Get in
// the same request flow observes it.
func (c *Ristretto) Set(key string, value any, ttl time.Duration) {
	c.inner.SetWithTTL(key, value, 1, ttl)
	c.inner.Wait()
}

// Close releases the cache's background resources.
func (c *Ristretto) Close() {
	c.inner.Close()
}
