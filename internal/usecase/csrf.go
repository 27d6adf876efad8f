package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/allahbobax/boolean-api/internal/core/port"
	"github.com/allahbobax/boolean-api/internal/infra/security"
)

const (
	csrfTokenBytes      = 32
	defaultCsrfTokenTTL = time.Hour
)

// CsrfService issues and validates per-session anti-forgery tokens. Tokens
// live in the counter store keyed by session id and stay valid until expiry;
// issuing again simply replaces the previous token.
//
// Validation fails open when the store itself is down. Blocking every
// state-changing request on a cache outage is a worse failure mode than
// briefly losing forgery protection.
type CsrfService struct {
	store  port.CounterStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewCsrfService wires the token cache.
func NewCsrfService(store port.CounterStore, ttl time.Duration, log *zap.Logger) *CsrfService {
	if ttl <= 0 {
		ttl = defaultCsrfTokenTTL
	}
	return &CsrfService{store: store, ttl: ttl, logger: log}
}

// Issue mints a fresh token bound to the session id.
func (s *CsrfService) Issue(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session id is required")
	}

	token, err := security.GenerateSecureToken(csrfTokenBytes)
	if err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}

	if err := s.store.Set(ctx, csrfKey(sessionID), token, s.ttl); err != nil {
		return "", fmt.Errorf("store csrf token: %w", err)
	}

	return token, nil
}

// Validate reports whether the presented token matches the one stored for the
// session. Missing or expired tokens fail; store outages pass with a warning.
func (s *CsrfService) Validate(ctx context.Context, sessionID, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}

	stored, err := s.store.Get(ctx, csrfKey(sessionID))
	if err != nil {
		if errors.Is(err, port.ErrKeyNotFound) {
			return false
		}
		s.logger.Warn("CSRF token store unavailable, allowing request", zap.Error(err))
		return true
	}

	return security.ConstantTimeEquals(token, stored)
}

func csrfKey(sessionID string) string {
	return "csrf:" + sessionID
}
