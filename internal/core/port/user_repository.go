package port

import (
	"context"
	"time"

	"github.com/allahbobax/boolean-api/internal/core/domain"
)

// UserRepository exposes persistence behavior for user accounts. Lockout
// counters and the hardware binding are mutated only through the targeted
// updates below, never by whole-row writes.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByHWID(ctx context.Context, hwid string) (*domain.User, error)

	RecordLoginFailure(ctx context.Context, id string, attempts int, lockedUntil *time.Time, at time.Time) error
	ClearLoginFailures(ctx context.Context, id string) error

	SetHWID(ctx context.Context, id, hwid string) error
	ClearHWID(ctx context.Context, id string) error

	LinkOAuth(ctx context.Context, id string, provider, oauthID string, avatar, hwid *string) error
}
