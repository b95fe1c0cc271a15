package interfaces

import (
	"context"
	"time"
)

// CacheFetchFunc produces the value stored under a cache key on a miss.
type CacheFetchFunc func(ctx context.Context) (any, error)

// CacheProvider memoizes function results. Fetch errors are returned to the
// caller and never cached.
type CacheProvider interface {
	// GetOrFetch returns the cached value for key or stores the result of fetch.
	// A zero ttl selects the provider default.
	GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch CacheFetchFunc) (any, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}
