package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/allahbobax/boolean-api/internal/core/domain"
	"github.com/allahbobax/boolean-api/internal/core/port"
	"github.com/allahbobax/boolean-api/internal/infra/security"
	"github.com/allahbobax/boolean-api/internal/repository"
)

var (
	// ErrDeviceConflict indicates the hardware id is bound to another account.
	ErrDeviceConflict = errors.New("hardware id belongs to another account")
	// ErrDeviceBound indicates the account already has a different hardware
	// id; the binding is sticky and requires an explicit reset.
	ErrDeviceBound = errors.New("hardware id already bound")
	// ErrDeviceMismatch indicates the presented hardware id does not match
	// the bound one.
	ErrDeviceMismatch = errors.New("hardware id mismatch")
)

// DeviceService manages the one-device hardware binding on accounts.
type DeviceService struct {
	users  port.UserRepository
	events port.EventPublisher
	logger *zap.Logger
}

// NewDeviceService constructs a DeviceService instance.
func NewDeviceService(users port.UserRepository, events port.EventPublisher, log *zap.Logger) *DeviceService {
	return &DeviceService{users: users, events: events, logger: log}
}

// Current returns the hardware id bound to the account, nil when unbound.
func (s *DeviceService) Current(ctx context.Context, userID string) (*string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.HWID, nil
}

// Bind attaches a hardware id to the account. Binding the same id again is a
// no-op; a different id on either side is rejected.
func (s *DeviceService) Bind(ctx context.Context, userID, hwid string) error {
	hwid = strings.TrimSpace(hwid)
	if hwid == "" {
		return fmt.Errorf("hwid is required")
	}

	owner, err := s.users.GetByHWID(ctx, hwid)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("lookup hwid owner: %w", err)
	}
	if owner != nil && owner.ID != userID {
		s.publishConflict(ctx, userID, hwid)
		return ErrDeviceConflict
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}

	switch {
	case user.HWID == nil:
		if err := s.users.SetHWID(ctx, userID, hwid); err != nil {
			return fmt.Errorf("set hwid: %w", err)
		}
		return nil
	case *user.HWID == hwid:
		return nil
	default:
		return ErrDeviceBound
	}
}

// Reset clears the binding so the next launch can adopt a new device.
func (s *DeviceService) Reset(ctx context.Context, userID string) error {
	if err := s.users.ClearHWID(ctx, userID); err != nil {
		return fmt.Errorf("clear hwid: %w", err)
	}

	s.logger.Info("Hardware binding reset", zap.String("user_id", userID))
	return nil
}

// Verify checks the presented hardware id against the binding and returns the
// account for subscription checks. An unbound account adopts the presented id
// on the spot.
func (s *DeviceService) Verify(ctx context.Context, userID, hwid string) (*domain.User, error) {
	hwid = strings.TrimSpace(hwid)
	if hwid == "" {
		return nil, fmt.Errorf("hwid is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if user.IsBanned {
		return nil, ErrAccountBanned
	}

	if user.HWID == nil {
		if err := s.users.SetHWID(ctx, userID, hwid); err != nil {
			return nil, fmt.Errorf("adopt hwid: %w", err)
		}
		adopted := hwid
		user.HWID = &adopted
		return user, nil
	}

	if *user.HWID != hwid {
		return nil, ErrDeviceMismatch
	}

	return user, nil
}

func (s *DeviceService) publishConflict(ctx context.Context, userID, hwid string) {
	digest := security.HashToken(hwid)

	s.logger.Warn("Hardware id bind conflict",
		zap.String("user_id", userID),
		zap.String("hwid_digest", digest),
	)
	if err := s.events.PublishDeviceConflict(ctx, domain.DeviceConflictEvent{
		EventID:    uuid.NewString(),
		UserID:     userID,
		HWIDDigest: digest,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("Failed to publish device conflict event", zap.Error(err))
	}
}
