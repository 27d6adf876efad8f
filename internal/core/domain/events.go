package domain

import "time"

// UserRegisteredEvent is emitted after a new account row is committed.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Username     string
	Email        string
	Method       string
	RegisteredAt time.Time
}

// LoginFailedEvent is emitted for every failed credential check.
type LoginFailedEvent struct {
	EventID    string
	UserID     string
	Identifier string
	Attempts   int
	IP         string
	OccurredAt time.Time
}

// AccountLockedEvent is emitted when the lockout threshold is crossed.
type AccountLockedEvent struct {
	EventID     string
	UserID      string
	LockedUntil time.Time
	OccurredAt  time.Time
}

// DeviceConflictEvent is emitted when a hardware id bind is rejected because
// the id belongs to a different account.
type DeviceConflictEvent struct {
	EventID    string
	UserID     string
	HWIDDigest string
	OccurredAt time.Time
}
