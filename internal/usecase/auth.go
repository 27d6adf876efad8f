package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/allahbobax/boolean-api/internal/core/domain"
	"github.com/allahbobax/boolean-api/internal/core/port"
	"github.com/allahbobax/boolean-api/internal/infra/logger"
	"github.com/allahbobax/boolean-api/internal/infra/security"
	"github.com/allahbobax/boolean-api/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided identifier or password are
	// incorrect. Unknown accounts and wrong passwords are indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountBanned indicates the account is banned from the service.
	ErrAccountBanned = errors.New("account banned")
)

const clearFailuresTimeout = 5 * time.Second

// AuthService coordinates credential login and session validation.
type AuthService struct {
	users   port.UserRepository
	lockout *LockoutPolicy
	signer  *security.SessionSigner
	events  port.EventPublisher
	logger  *zap.Logger

	loginFailures prometheus.Counter
	lockouts      prometheus.Counter
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	users port.UserRepository,
	lockout *LockoutPolicy,
	signer *security.SessionSigner,
	events port.EventPublisher,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		users:   users,
		lockout: lockout,
		signer:  signer,
		events:  events,
		logger:  log,
	}
}

// WithMetrics attaches the security counters (optional).
func (s *AuthService) WithMetrics(loginFailures, lockouts prometheus.Counter) *AuthService {
	s.loginFailures = loginFailures
	s.lockouts = lockouts
	return s
}

// Login validates credentials and issues a session token. Failed attempts
// feed the lockout policy; a fifth consecutive failure locks the account.
func (s *AuthService) Login(ctx context.Context, identifier, password, ip string) (string, domain.User, error) {
	if identifier == "" {
		return "", domain.User{}, fmt.Errorf("identifier is required")
	}
	if password == "" {
		return "", domain.User{}, fmt.Errorf("password is required")
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.User{}, ErrInvalidCredentials
		}
		return "", domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if user.IsBanned {
		return "", domain.User{}, ErrAccountBanned
	}

	if locked, remaining := s.lockout.Active(user); locked {
		return "", domain.User{}, &AccountLockedError{Remaining: remaining}
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		if !errors.Is(err, security.ErrLegacyPasswordHash) {
			return "", domain.User{}, fmt.Errorf("verify password: %w", err)
		}
		// Pre-migration hash formats never verify; the attempt still counts
		// as a failure so the account locks like any other.
		s.logger.Warn("Rejected login against legacy password hash",
			zap.String("user_id", user.ID),
		)
		ok = false
	}
	if !ok {
		if err := s.registerFailure(ctx, user, identifier, ip); err != nil {
			return "", domain.User{}, err
		}
		return "", domain.User{}, ErrInvalidCredentials
	}

	token, err := s.signer.Mint(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("mint session token: %w", err)
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		go s.clearLoginState(user.ID)
	}

	sanitized := *user
	sanitized.PasswordHash = ""
	return token, sanitized, nil
}

// CurrentUser resolves a bearer token to a fresh user row. Claims alone are
// not trusted for bans or admin checks; the row is re-read on every call.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, *security.SessionClaims, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, security.ErrInvalidSessionToken
		}
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}

	if user.IsBanned {
		return nil, nil, ErrAccountBanned
	}

	return user, claims, nil
}

func (s *AuthService) registerFailure(ctx context.Context, user *domain.User, identifier, ip string) error {
	now := time.Now().UTC()
	attempts, lockedUntil := s.lockout.NextFailure(user)

	if s.loginFailures != nil {
		s.loginFailures.Inc()
	}

	if err := s.users.RecordLoginFailure(ctx, user.ID, attempts, lockedUntil, now); err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}

	if err := s.events.PublishLoginFailed(ctx, domain.LoginFailedEvent{
		EventID:    uuid.NewString(),
		UserID:     user.ID,
		Identifier: logger.MaskString(identifier),
		Attempts:   attempts,
		IP:         logger.MaskIP(ip),
		OccurredAt: now,
	}); err != nil {
		s.logger.Warn("Failed to publish login failure event", zap.Error(err))
	}

	if lockedUntil == nil {
		return nil
	}

	if s.lockouts != nil {
		s.lockouts.Inc()
	}

	s.logger.Warn("Account locked after repeated login failures",
		zap.String("user_id", user.ID),
		zap.Int("attempts", attempts),
		zap.Time("locked_until", *lockedUntil),
	)
	if err := s.events.PublishAccountLocked(ctx, domain.AccountLockedEvent{
		EventID:     uuid.NewString(),
		UserID:      user.ID,
		LockedUntil: *lockedUntil,
		OccurredAt:  now,
	}); err != nil {
		s.logger.Warn("Failed to publish account locked event", zap.Error(err))
	}

	return nil
}

// clearLoginState resets the failure counters off the request path. A failed
// reset costs the user stale counters, not a failed login, so it only logs.
func (s *AuthService) clearLoginState(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), clearFailuresTimeout)
	defer cancel()

	if err := s.users.ClearLoginFailures(ctx, userID); err != nil {
		s.logger.Warn("Failed to clear login failure counters",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
