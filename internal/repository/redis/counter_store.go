package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/allahbobax/boolean-api/internal/core/port"
)

// CounterStore implements port.CounterStore on a shared Redis instance.
// Increments are atomic at the store level, so concurrent requests for the
// same key never under-count.
type CounterStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewCounterStore constructs a store using the provided Redis client.
func NewCounterStore(client *redis.Client, keyPrefix string) *CounterStore {
	return &CounterStore{client: client, keyPrefix: keyPrefix}
}

// Incr atomically increments key and applies the TTL on the first hit of the
// window, which is what gives the counter fixed-window semantics.
func (s *CounterStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	full := s.key(key)

	count, err := s.client.Incr(ctx, full).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}

	if count == 1 && ttl > 0 {
		if err := s.client.Expire(ctx, full, ttl).Err(); err != nil {
			return 0, fmt.Errorf("redis expire: %w", err)
		}
	}

	return count, nil
}

// TTL reports the remaining lifetime of key.
func (s *CounterStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, s.key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis ttl: %w", err)
	}
	// go-redis returns -2 for a missing key and -1 for no expiry.
	if ttl < 0 {
		return 0, port.ErrKeyNotFound
	}
	return ttl, nil
}

// Get returns the stored value for key.
func (s *CounterStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", port.ErrKeyNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

// Set stores value under key with the supplied TTL.
func (s *CounterStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *CounterStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *CounterStore) key(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

var _ port.CounterStore = (*CounterStore)(nil)
