package domain

import "time"

// SubscriptionTier enumerates the product tiers a user can hold.
type SubscriptionTier string

const (
	SubscriptionFree    SubscriptionTier = "free"
	SubscriptionPremium SubscriptionTier = "premium"
	SubscriptionLife    SubscriptionTier = "lifetime"
)

// User mirrors the persisted representation in the users table.
type User struct {
	ID                  string
	Username            string
	Email               string
	PasswordHash        string
	Subscription        SubscriptionTier
	SubscriptionEndDate *time.Time
	Avatar              *string
	RegisteredAt        time.Time
	IsAdmin             bool
	IsBanned            bool
	EmailVerified       bool
	HWID                *string
	OAuthProvider       *string
	OAuthID             *string
	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastFailedLoginAt   *time.Time
}

// Locked reports whether the account is under an active login lock.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// LockRemaining returns the time left on an active lock, zero otherwise.
func (u *User) LockRemaining(now time.Time) time.Duration {
	if !u.Locked(now) {
		return 0
	}
	return u.LockedUntil.Sub(now)
}
