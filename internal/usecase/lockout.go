package usecase

import (
	"fmt"
	"time"

	"github.com/allahbobax/boolean-api/internal/core/domain"
	"github.com/allahbobax/boolean-api/internal/infra/config"
)

const (
	defaultLockoutAttempts = 5
	defaultLockDuration    = 30 * time.Minute
)

// AccountLockedError rejects a login attempt against a locked account. The
// remaining duration is surfaced to the client so it can show a countdown.
type AccountLockedError struct {
	Remaining time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %d minute(s)", e.MinutesRemaining())
}

// MinutesRemaining rounds the remaining lock time up to whole minutes.
func (e *AccountLockedError) MinutesRemaining() int {
	mins := int((e.Remaining + time.Minute - 1) / time.Minute)
	if mins < 1 {
		mins = 1
	}
	return mins
}

// LockoutPolicy decides when repeated login failures lock an account and for
// how long. Locks expire lazily: nothing clears the row, the expiry check
// happens on the next login attempt.
type LockoutPolicy struct {
	maxAttempts  int
	lockDuration time.Duration
	now          func() time.Time
}

// NewLockoutPolicy builds the policy from configuration, falling back to the
// stock thresholds when unset.
func NewLockoutPolicy(cfg config.LockoutSettings) *LockoutPolicy {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultLockoutAttempts
	}
	lockDuration := cfg.LockDuration
	if lockDuration <= 0 {
		lockDuration = defaultLockDuration
	}

	return &LockoutPolicy{
		maxAttempts:  maxAttempts,
		lockDuration: lockDuration,
		now:          time.Now,
	}
}

// WithClock overrides the time source (testing only).
func (p *LockoutPolicy) WithClock(now func() time.Time) *LockoutPolicy {
	if now != nil {
		p.now = now
	}
	return p
}

// Active reports whether the user is under a live lock and how long remains.
func (p *LockoutPolicy) Active(user *domain.User) (bool, time.Duration) {
	now := p.now()
	return user.Locked(now), user.LockRemaining(now)
}

// NextFailure computes the failure counter after one more failed attempt and,
// when the threshold is crossed, the timestamp the resulting lock expires at.
func (p *LockoutPolicy) NextFailure(user *domain.User) (int, *time.Time) {
	attempts := user.FailedLoginAttempts + 1
	if attempts < p.maxAttempts {
		return attempts, nil
	}

	until := p.now().UTC().Add(p.lockDuration)
	return attempts, &until
}
