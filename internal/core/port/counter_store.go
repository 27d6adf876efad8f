package port

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound indicates the requested key is absent or expired.
var ErrKeyNotFound = errors.New("counter store: key not found")

// CounterStore is the shared get/set/incr surface with TTL semantics backing
// the rate limiter and the CSRF token cache. Implementations must make Incr
// atomic: two concurrent increments of the same key may never under-count.
type CounterStore interface {
	// Incr atomically increments key and returns the new count. The TTL is
	// applied only when the increment created the key, which gives the
	// counter fixed-window semantics.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// TTL reports the remaining lifetime of key, ErrKeyNotFound if absent.
	TTL(ctx context.Context, key string) (time.Duration, error)

	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
