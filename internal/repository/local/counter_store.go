package local

import (
	"context"
	"sync"
	"time"

	"github.com/allahbobax/boolean-api/internal/core/port"
)

type entry struct {
	count     int64
	value     string
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// CounterStore is the in-process implementation of port.CounterStore. It
// backs the rate limiter when the shared store is unreachable, so a Redis
// outage degrades to node-local limiting instead of disabling limiting.
// Expired entries are removed lazily on access and by a periodic sweep.
type CounterStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewCounterStore constructs an empty local store.
func NewCounterStore() *CounterStore {
	return &CounterStore{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// WithClock overrides the time source (testing only).
func (s *CounterStore) WithClock(now func() time.Time) *CounterStore {
	if now != nil {
		s.now = now
	}
	return s
}

// StartSweeper launches a background goroutine removing expired entries
// until ctx is cancelled.
func (s *CounterStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// Incr atomically increments key, applying the TTL when the key is created.
func (s *CounterStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || e.expired(now) {
		e = &entry{}
		if ttl > 0 {
			e.expiresAt = now.Add(ttl)
		}
		s.entries[key] = e
	}

	e.count++
	return e.count, nil
}

// TTL reports the remaining lifetime of key.
func (s *CounterStore) TTL(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || e.expired(now) {
		delete(s.entries, key)
		return 0, port.ErrKeyNotFound
	}
	if e.expiresAt.IsZero() {
		return 0, port.ErrKeyNotFound
	}

	return e.expiresAt.Sub(now), nil
}

// Get returns the stored value for key.
func (s *CounterStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.expired(s.now()) {
		delete(s.entries, key)
		return "", port.ErrKeyNotFound
	}

	return e.value, nil
}

// Set stores value under key with the supplied TTL.
func (s *CounterStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e

	return nil
}

// Delete removes key.
func (s *CounterStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *CounterStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
		}
	}
}

var _ port.CounterStore = (*CounterStore)(nil)
