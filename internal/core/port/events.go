package port

import (
	"context"

	"github.com/allahbobax/boolean-api/internal/core/domain"
)

// EventPublisher publishes account security events for downstream consumers.
// Publishing is best-effort: callers log failures and never block a request
// on delivery.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishLoginFailed(ctx context.Context, event domain.LoginFailedEvent) error
	PublishAccountLocked(ctx context.Context, event domain.AccountLockedEvent) error
	PublishDeviceConflict(ctx context.Context, event domain.DeviceConflictEvent) error
}
