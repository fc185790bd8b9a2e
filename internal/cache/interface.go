package cache

import (
	"context"
	"time"
)

// Cache is the distributed key/value store holding DTO copies of catalog
// state. It is a derived, expendable view: correctness never depends on an
// entry being present, only on stale entries being removed after writes or
// expiring by TTL.
type Cache interface {
	Get(ctx context.Context, key string, value any) (bool, error)

	// GetOrAdd returns the cached value for key, or invokes factory on a
	// miss and stores the result for ttl. The populate is atomic: two
	// concurrent misses agree on a single stored value with one TTL clock.
	// A cache-store fault degrades to a direct factory call; the error
	// returned is the factory's, never the store's.
	GetOrAdd(ctx context.Context, key string, dest any, ttl time.Duration, factory func(ctx context.Context) (any, error)) error

	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
