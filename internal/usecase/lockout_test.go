package usecase

import (
	"testing"
	"time"

	"github.com/allahbobax/boolean-api/internal/core/domain"
	"github.com/allahbobax/boolean-api/internal/infra/config"
)

func TestLockoutPolicyNextFailure(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := NewLockoutPolicy(config.LockoutSettings{MaxAttempts: 5, LockDuration: 30 * time.Minute}).
		WithClock(func() time.Time { return now })

	user := &domain.User{FailedLoginAttempts: 3}
	attempts, lockedUntil := policy.NextFailure(user)
	if attempts != 4 || lockedUntil != nil {
		t.Fatalf("fourth failure: got attempts=%d locked=%v", attempts, lockedUntil)
	}

	user.FailedLoginAttempts = 4
	attempts, lockedUntil = policy.NextFailure(user)
	if attempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", attempts)
	}
	if lockedUntil == nil {
		t.Fatal("expected a lock on the fifth failure")
	}
	if want := now.Add(30 * time.Minute); !lockedUntil.Equal(want) {
		t.Errorf("expected lock until %v, got %v", want, *lockedUntil)
	}
}

func TestLockoutPolicyActive(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := NewLockoutPolicy(config.LockoutSettings{}).WithClock(func() time.Time { return now })

	until := now.Add(10 * time.Minute)
	user := &domain.User{LockedUntil: &until}

	locked, remaining := policy.Active(user)
	if !locked {
		t.Fatal("expected active lock")
	}
	if remaining != 10*time.Minute {
		t.Errorf("expected 10m remaining, got %v", remaining)
	}

	expired := now.Add(-time.Second)
	user.LockedUntil = &expired
	if locked, _ := policy.Active(user); locked {
		t.Error("expected expired lock to be inactive")
	}

	user.LockedUntil = nil
	if locked, _ := policy.Active(user); locked {
		t.Error("expected unlocked account to be inactive")
	}
}

func TestLockoutPolicyDefaults(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := NewLockoutPolicy(config.LockoutSettings{}).WithClock(func() time.Time { return now })

	user := &domain.User{FailedLoginAttempts: 4}
	_, lockedUntil := policy.NextFailure(user)
	if lockedUntil == nil {
		t.Fatal("expected default threshold of 5 attempts")
	}
	if want := now.Add(30 * time.Minute); !lockedUntil.Equal(want) {
		t.Errorf("expected default 30m lock, got %v", *lockedUntil)
	}
}

func TestAccountLockedErrorMinutes(t *testing.T) {
	cases := []struct {
		remaining time.Duration
		want      int
	}{
		{remaining: 30 * time.Minute, want: 30},
		{remaining: 29*time.Minute + time.Second, want: 30},
		{remaining: 30 * time.Second, want: 1},
		{remaining: 0, want: 1},
	}

	for _, tc := range cases {
		err := &AccountLockedError{Remaining: tc.remaining}
		if got := err.MinutesRemaining(); got != tc.want {
			t.Errorf("MinutesRemaining(%v) = %d, want %d", tc.remaining, got, tc.want)
		}
	}
}
