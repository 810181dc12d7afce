package ports

import (
	"context"
	"time"
)

// Cache is an explicitly injected TTL cache with explicit invalidation.
// Nothing in the core holds cached state of its own; everything cached
// goes through this port so tests can swap it out.
type Cache interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
