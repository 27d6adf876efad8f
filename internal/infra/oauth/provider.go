package oauth

import (
	"context"
	"net/http"
	"time"

	"github.com/allahbobax/boolean-api/internal/core/domain"
	"github.com/allahbobax/boolean-api/internal/infra/config"
)

// Every provider exchange is bounded by this client timeout; a slow identity
// provider cannot stall a callback request indefinitely.
const exchangeTimeout = 8 * time.Second

// Provider exchanges an authorization code for a normalized profile.
// One implementation exists per supported identity provider.
type Provider interface {
	Name() domain.OAuthProvider
	AuthorizeURL(state string) string
	Exchange(ctx context.Context, code string) (*domain.OAuthProfile, error)
}

// Registry maps typed provider names to their implementations.
type Registry struct {
	providers map[domain.OAuthProvider]Provider
}

// NewRegistry wires the configured providers.
func NewRegistry(cfg config.OAuthSettings) *Registry {
	client := &http.Client{Timeout: exchangeTimeout}

	r := &Registry{providers: make(map[domain.OAuthProvider]Provider)}
	r.register(NewGitHubProvider(cfg.GitHub, client))
	r.register(NewGoogleProvider(cfg.Google, client))
	r.register(NewYandexProvider(cfg.Yandex, client))
	return r
}

func (r *Registry) register(p Provider) {
	r.providers[p.Name()] = p
}

// Lookup returns the provider implementation for a typed name.
func (r *Registry) Lookup(name domain.OAuthProvider) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}
