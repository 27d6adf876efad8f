package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/allahbobax/boolean-api/internal/infra/config"
)

// Provider holds process-level collectors registered once at startup.
// Request-level metrics live in the HTTP middleware.
type Provider struct {
	buildInfo      prometheus.Gauge
	loginFailures  prometheus.Counter
	lockouts       prometheus.Counter
	rateRejections *prometheus.CounterVec
}

// Attach registers the service collectors and returns a provider handle.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	buildInfo := promauto.NewGauge(prometheus.GaugeOpts{
		Namespace:   "boolean",
		Name:        "build_info",
		Help:        "Constant gauge labelled with service metadata.",
		ConstLabels: prometheus.Labels{"service": cfg.App.Name, "env": cfg.App.Env},
	})
	buildInfo.Set(1)

	loginFailures := promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "boolean",
		Subsystem: "security",
		Name:      "login_failures_total",
		Help:      "Total number of failed credential checks.",
	})

	lockouts := promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "boolean",
		Subsystem: "security",
		Name:      "account_lockouts_total",
		Help:      "Total number of accounts locked for repeated failures.",
	})

	rateRejections := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boolean",
		Subsystem: "security",
		Name:      "rate_limit_rejections_total",
		Help:      "Total number of requests rejected by a rate-limit scope.",
	}, []string{"scope"})

	return &Provider{
		buildInfo:      buildInfo,
		loginFailures:  loginFailures,
		lockouts:       lockouts,
		rateRejections: rateRejections,
	}, nil
}

// LoginFailures exposes the failed login counter.
func (p *Provider) LoginFailures() prometheus.Counter {
	if p == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{})
	}
	return p.loginFailures
}

// Lockouts exposes the account lockout counter.
func (p *Provider) Lockouts() prometheus.Counter {
	if p == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{})
	}
	return p.lockouts
}

// RateLimitRejections exposes the per-scope rejection counter.
func (p *Provider) RateLimitRejections() *prometheus.CounterVec {
	if p == nil {
		return prometheus.NewCounterVec(prometheus.CounterOpts{}, []string{"scope"})
	}
	return p.rateRejections
}
