package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/allahbobax/boolean-api/internal/core/port"
	"github.com/allahbobax/boolean-api/internal/infra/config"
)

// RateScope names one of the preconfigured request budgets.
type RateScope string

const (
	ScopeLogin      RateScope = "login"
	ScopeRegister   RateScope = "register"
	ScopeEmail      RateScope = "email"
	ScopeForgot     RateScope = "forgot"
	ScopeVerifyCode RateScope = "verify_code"
	ScopeGeneral    RateScope = "general"
)

// RateLimitResult describes one admission decision.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// RateLimiter enforces fixed-window budgets per scope and client key. The
// shared store keeps counts consistent across instances; when it is
// unreachable the limiter degrades to a per-instance local store rather than
// waving traffic through unchecked.
type RateLimiter struct {
	shared     port.CounterStore
	local      port.CounterStore
	scopes     map[RateScope]config.ScopeSettings
	logger     *zap.Logger
	now        func() time.Time
	rejections *prometheus.CounterVec
}

// NewRateLimiter wires scope budgets over the shared and fallback stores.
func NewRateLimiter(cfg config.RateLimitSettings, shared, local port.CounterStore, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		shared: shared,
		local:  local,
		scopes: map[RateScope]config.ScopeSettings{
			ScopeLogin:      cfg.Login,
			ScopeRegister:   cfg.Register,
			ScopeEmail:      cfg.Email,
			ScopeForgot:     cfg.Forgot,
			ScopeVerifyCode: cfg.VerifyCode,
			ScopeGeneral:    cfg.General,
		},
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the time source (testing only).
func (l *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		l.now = now
	}
	return l
}

// WithMetrics attaches the per-scope rejection counter.
func (l *RateLimiter) WithMetrics(rejections *prometheus.CounterVec) *RateLimiter {
	l.rejections = rejections
	return l
}

// Check counts one request against the scope budget for clientKey and decides
// admission. It never returns an error: a broken shared store falls back to
// the local one, so the decision is always made against some counter.
func (l *RateLimiter) Check(ctx context.Context, scope RateScope, clientKey string) RateLimitResult {
	rule, ok := l.scopes[scope]
	if !ok || rule.MaxRequests <= 0 || rule.Window <= 0 {
		rule = l.scopes[ScopeGeneral]
	}

	key := fmt.Sprintf("ratelimit:%s:%s", scope, clientKey)
	now := l.now()

	store := l.shared
	count, err := store.Incr(ctx, key, rule.Window)
	if err != nil {
		l.logger.Warn("Shared counter store unavailable, using local fallback",
			zap.String("scope", string(scope)),
			zap.Error(err),
		)
		store = l.local
		count, err = store.Incr(ctx, key, rule.Window)
		if err != nil {
			// Both stores failing leaves no counter to consult; deny.
			l.logger.Error("Local counter store failed", zap.Error(err))
			l.countRejection(scope)
			return RateLimitResult{
				Allowed:    false,
				Limit:      rule.MaxRequests,
				Remaining:  0,
				ResetAt:    now.Add(rule.Window),
				RetryAfter: rule.Window,
			}
		}
	}

	resetAt := now.Add(rule.Window)
	if ttl, err := store.TTL(ctx, key); err == nil && ttl > 0 {
		resetAt = now.Add(ttl)
	}

	result := RateLimitResult{
		Allowed: count <= int64(rule.MaxRequests),
		Limit:   rule.MaxRequests,
		ResetAt: resetAt,
	}
	if remaining := int64(rule.MaxRequests) - count; remaining > 0 {
		result.Remaining = int(remaining)
	}
	if !result.Allowed {
		result.RetryAfter = resetAt.Sub(now)
		l.countRejection(scope)
	}

	return result
}

func (l *RateLimiter) countRejection(scope RateScope) {
	if l.rejections != nil {
		l.rejections.WithLabelValues(string(scope)).Inc()
	}
}
