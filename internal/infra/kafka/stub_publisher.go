package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/allahbobax/boolean-api/internal/core/domain"
	"github.com/allahbobax/boolean-api/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when the
// broker is disabled (development, single-node deployments).
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
	)
}

func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.logEvent("accounts.user.registered", event.UserID, event.RegisteredAt)
	return nil
}

func (p *StubPublisher) PublishLoginFailed(_ context.Context, event domain.LoginFailedEvent) error {
	p.logEvent("accounts.login.failed", event.UserID, event.OccurredAt)
	return nil
}

func (p *StubPublisher) PublishAccountLocked(_ context.Context, event domain.AccountLockedEvent) error {
	p.logEvent("accounts.account.locked", event.UserID, event.OccurredAt)
	return nil
}

func (p *StubPublisher) PublishDeviceConflict(_ context.Context, event domain.DeviceConflictEvent) error {
	p.logEvent("accounts.device.conflict", event.UserID, event.OccurredAt)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
