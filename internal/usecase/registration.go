package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/allahbobax/boolean-api/internal/core/domain"
	"github.com/allahbobax/boolean-api/internal/core/port"
	"github.com/allahbobax/boolean-api/internal/infra/logger"
	"github.com/allahbobax/boolean-api/internal/infra/security"
	"github.com/allahbobax/boolean-api/internal/repository"
)

// ErrUserExists indicates the username or email is already registered.
var ErrUserExists = errors.New("user already exists")

// ValidationError carries a field-level input rejection to the transport
// layer without leaking internals.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

// RegistrationService creates password-based accounts.
type RegistrationService struct {
	users  port.UserRepository
	policy *security.PasswordPolicy
	signer *security.SessionSigner
	events port.EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewRegistrationService constructs a RegistrationService instance.
func NewRegistrationService(
	users port.UserRepository,
	policy *security.PasswordPolicy,
	signer *security.SessionSigner,
	events port.EventPublisher,
	log *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		users:  users,
		policy: policy,
		signer: signer,
		events: events,
		logger: log,
		now:    time.Now,
	}
}

// WithClock overrides the time source (testing only).
func (s *RegistrationService) WithClock(now func() time.Time) *RegistrationService {
	if now != nil {
		s.now = now
	}
	return s
}

// Register validates input, creates the account and issues a session token so
// the new user is signed in immediately.
func (s *RegistrationService) Register(ctx context.Context, username, email, password string) (string, domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if !usernamePattern.MatchString(username) {
		return "", domain.User{}, &ValidationError{
			Field:   "username",
			Message: "must be 3-32 characters of letters, digits or underscore",
		}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", domain.User{}, &ValidationError{Field: "email", Message: "invalid email address"}
	}
	if err := s.policy.Validate(password, username, email); err != nil {
		var policyErr *security.PasswordValidationError
		if errors.As(err, &policyErr) {
			return "", domain.User{}, &ValidationError{Field: "password", Message: policyErr.Message}
		}
		return "", domain.User{}, fmt.Errorf("validate password: %w", err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Subscription: domain.SubscriptionFree,
		RegisteredAt: s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return "", domain.User{}, ErrUserExists
		}
		return "", domain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
	)

	if err := s.events.PublishUserRegistered(ctx, domain.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       user.ID,
		Username:     user.Username,
		Email:        logger.MaskEmail(user.Email),
		Method:       "password",
		RegisteredAt: user.RegisteredAt,
	}); err != nil {
		s.logger.Warn("Failed to publish registration event", zap.Error(err))
	}

	token, err := s.signer.Mint(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("mint session token: %w", err)
	}

	user.PasswordHash = ""
	return token, user, nil
}
