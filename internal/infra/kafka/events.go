package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/allahbobax/boolean-api/internal/core/domain"
	"github.com/allahbobax/boolean-api/internal/core/port"
	"github.com/allahbobax/boolean-api/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, logger: logger, appCfg: appCfg}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes accounts.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       string    `json:"user_id"`
		Username     string    `json:"username"`
		Email        string    `json:"email,omitempty"`
		Method       string    `json:"method"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		UserID:       event.UserID,
		Username:     event.Username,
		Email:        event.Email,
		Method:       event.Method,
		RegisteredAt: event.RegisteredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "accounts.user.registered", event.UserID, event.RegisteredAt, payload)
}

// PublishLoginFailed publishes accounts.login.failed events.
func (p *EventPublisher) PublishLoginFailed(ctx context.Context, event domain.LoginFailedEvent) error {
	payload := struct {
		UserID     string    `json:"user_id,omitempty"`
		Identifier string    `json:"identifier"`
		Attempts   int       `json:"attempts"`
		IP         string    `json:"ip,omitempty"`
		OccurredAt time.Time `json:"occurred_at"`
	}{
		UserID:     event.UserID,
		Identifier: event.Identifier,
		Attempts:   event.Attempts,
		IP:         event.IP,
		OccurredAt: event.OccurredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "accounts.login.failed", event.UserID, event.OccurredAt, payload)
}

// PublishAccountLocked publishes accounts.account.locked events.
func (p *EventPublisher) PublishAccountLocked(ctx context.Context, event domain.AccountLockedEvent) error {
	payload := struct {
		UserID      string    `json:"user_id"`
		LockedUntil time.Time `json:"locked_until"`
		OccurredAt  time.Time `json:"occurred_at"`
	}{
		UserID:      event.UserID,
		LockedUntil: event.LockedUntil.UTC(),
		OccurredAt:  event.OccurredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "accounts.account.locked", event.UserID, event.OccurredAt, payload)
}

// PublishDeviceConflict publishes accounts.device.conflict events.
func (p *EventPublisher) PublishDeviceConflict(ctx context.Context, event domain.DeviceConflictEvent) error {
	payload := struct {
		UserID     string    `json:"user_id"`
		HWIDDigest string    `json:"hwid_digest"`
		OccurredAt time.Time `json:"occurred_at"`
	}{
		UserID:     event.UserID,
		HWIDDigest: event.HWIDDigest,
		OccurredAt: event.OccurredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "accounts.device.conflict", event.UserID, event.OccurredAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
