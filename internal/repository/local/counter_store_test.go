package local

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/allahbobax/boolean-api/internal/core/port"
)

func TestCounterStore_Incr(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewCounterStore().WithClock(func() time.Time { return now })

	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, err := store.Incr(ctx, "ratelimit:login:k", time.Minute)
		if err != nil {
			t.Fatalf("Incr returned error: %v", err)
		}
		if count != want {
			t.Fatalf("expected count %d, got %d", want, count)
		}
	}

	ttl, err := store.TTL(ctx, "ratelimit:login:k")
	if err != nil {
		t.Fatalf("TTL returned error: %v", err)
	}
	if ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}
}

func TestCounterStore_IncrWindowReset(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewCounterStore().WithClock(func() time.Time { return now })

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.Incr(ctx, "ratelimit:login:k", time.Minute); err != nil {
			t.Fatalf("Incr returned error: %v", err)
		}
	}

	now = now.Add(61 * time.Second)

	count, err := store.Incr(ctx, "ratelimit:login:k", time.Minute)
	if err != nil {
		t.Fatalf("Incr returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a fresh window after expiry, got count %d", count)
	}
}

func TestCounterStore_TTL(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewCounterStore().WithClock(func() time.Time { return now })

	ctx := context.Background()

	if _, err := store.TTL(ctx, "missing"); !errors.Is(err, port.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound for missing key, got %v", err)
	}

	// A key stored without a TTL has no reportable expiry.
	if _, err := store.Incr(ctx, "eternal", 0); err != nil {
		t.Fatalf("Incr returned error: %v", err)
	}
	if _, err := store.TTL(ctx, "eternal"); !errors.Is(err, port.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound for key without expiry, got %v", err)
	}

	if _, err := store.Incr(ctx, "windowed", 10*time.Minute); err != nil {
		t.Fatalf("Incr returned error: %v", err)
	}
	now = now.Add(4 * time.Minute)
	ttl, err := store.TTL(ctx, "windowed")
	if err != nil {
		t.Fatalf("TTL returned error: %v", err)
	}
	if ttl != 6*time.Minute {
		t.Fatalf("expected 6m remaining, got %v", ttl)
	}
}

func TestCounterStore_SetGetDelete(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewCounterStore().WithClock(func() time.Time { return now })

	ctx := context.Background()

	if err := store.Set(ctx, "csrf:session-1", "token-value", time.Hour); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	val, err := store.Get(ctx, "csrf:session-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if val != "token-value" {
		t.Fatalf("expected token-value, got %s", val)
	}

	now = now.Add(61 * time.Minute)
	if _, err := store.Get(ctx, "csrf:session-1"); !errors.Is(err, port.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound for expired key, got %v", err)
	}

	if err := store.Set(ctx, "csrf:session-1", "second", time.Hour); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := store.Delete(ctx, "csrf:session-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := store.Get(ctx, "csrf:session-1"); !errors.Is(err, port.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound after delete, got %v", err)
	}
}

func TestCounterStore_Sweep(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewCounterStore().WithClock(func() time.Time { return now })

	ctx := context.Background()

	if _, err := store.Incr(ctx, "short", time.Minute); err != nil {
		t.Fatalf("Incr returned error: %v", err)
	}
	if _, err := store.Incr(ctx, "long", time.Hour); err != nil {
		t.Fatalf("Incr returned error: %v", err)
	}

	now = now.Add(2 * time.Minute)
	store.sweep()

	store.mu.Lock()
	_, shortKept := store.entries["short"]
	_, longKept := store.entries["long"]
	store.mu.Unlock()

	if shortKept {
		t.Error("expected expired entry to be swept")
	}
	if !longKept {
		t.Error("expected live entry to survive the sweep")
	}
}
