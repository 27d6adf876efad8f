package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/allahbobax/boolean-api/internal/core/domain"
	"github.com/allahbobax/boolean-api/internal/core/port"
	"github.com/allahbobax/boolean-api/internal/infra/logger"
	"github.com/allahbobax/boolean-api/internal/infra/oauth"
	"github.com/allahbobax/boolean-api/internal/infra/security"
	"github.com/allahbobax/boolean-api/internal/repository"
)

var (
	// ErrUnknownProvider indicates the requested identity provider is not
	// configured.
	ErrUnknownProvider = errors.New("unknown oauth provider")
	// ErrInvalidState indicates the state parameter failed verification.
	ErrInvalidState = errors.New("invalid oauth state")
)

// OAuthCallbackResult is the outcome of a completed provider callback.
type OAuthCallbackResult struct {
	Token string
	User  domain.User
	State domain.StatePayload
}

// OAuthService drives the provider login flows: redirect construction, state
// round-tripping and account linking on callback.
type OAuthService struct {
	providers *oauth.Registry
	users     port.UserRepository
	states    *security.StateSigner
	sessions  *security.SessionSigner
	events    port.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewOAuthService constructs an OAuthService instance.
func NewOAuthService(
	providers *oauth.Registry,
	users port.UserRepository,
	states *security.StateSigner,
	sessions *security.SessionSigner,
	events port.EventPublisher,
	log *zap.Logger,
) *OAuthService {
	return &OAuthService{
		providers: providers,
		users:     users,
		states:    states,
		sessions:  sessions,
		events:    events,
		logger:    log,
		now:       time.Now,
	}
}

// WithClock overrides the time source (testing only).
func (s *OAuthService) WithClock(now func() time.Time) *OAuthService {
	if now != nil {
		s.now = now
	}
	return s
}

// AuthorizeURL signs the flow context into a state token and returns the
// provider consent page URL to redirect the client to.
func (s *OAuthService) AuthorizeURL(provider domain.OAuthProvider, source, hwid string) (string, error) {
	p, ok := s.providers.Lookup(provider)
	if !ok {
		return "", ErrUnknownProvider
	}

	state, err := s.states.Encode(domain.StatePayload{Source: source, HWID: hwid})
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}

	return p.AuthorizeURL(state), nil
}

// HandleCallback completes the flow: verifies state, exchanges the code, then
// links or creates the account and issues a session token.
func (s *OAuthService) HandleCallback(ctx context.Context, provider domain.OAuthProvider, code, stateToken string) (*OAuthCallbackResult, error) {
	p, ok := s.providers.Lookup(provider)
	if !ok {
		return nil, ErrUnknownProvider
	}
	if code == "" {
		return nil, fmt.Errorf("authorization code is required")
	}

	state := s.states.Decode(stateToken)
	if state.Empty() {
		return nil, ErrInvalidState
	}

	profile, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange %s code: %w", provider, err)
	}

	user, err := s.findOrCreate(ctx, provider, profile, state.HWID)
	if err != nil {
		return nil, err
	}

	token, err := s.sessions.Mint(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("mint session token: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""
	return &OAuthCallbackResult{Token: token, User: sanitized, State: state}, nil
}

func (s *OAuthService) findOrCreate(ctx context.Context, provider domain.OAuthProvider, profile *domain.OAuthProfile, hwid string) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" {
		email = fmt.Sprintf("%s@%s.oauth", profile.ID, provider)
	}

	var boundHWID *string
	if hwid != "" {
		boundHWID = &hwid
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		if user.IsBanned {
			return nil, ErrAccountBanned
		}
		if err := s.users.LinkOAuth(ctx, user.ID, string(provider), profile.ID, profile.Avatar, boundHWID); err != nil {
			return nil, fmt.Errorf("link oauth identity: %w", err)
		}
		return s.users.GetByID(ctx, user.ID)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	username, err := s.uniqueUsername(ctx, profile)
	if err != nil {
		return nil, err
	}

	// OAuth-only accounts still need a password column value; a random
	// secret keeps credential login closed until the user sets one.
	secret, err := security.GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate placeholder password: %w", err)
	}
	hash, err := security.HashPassword(secret)
	if err != nil {
		return nil, fmt.Errorf("hash placeholder password: %w", err)
	}

	providerName := string(provider)
	oauthID := profile.ID
	created := domain.User{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		Subscription:  domain.SubscriptionFree,
		Avatar:        profile.Avatar,
		RegisteredAt:  s.now().UTC(),
		EmailVerified: true,
		HWID:          boundHWID,
		OAuthProvider: &providerName,
		OAuthID:       &oauthID,
	}

	if err := s.users.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("create oauth user: %w", err)
	}

	s.logger.Info("User registered via oauth",
		zap.String("user_id", created.ID),
		zap.String("provider", providerName),
		zap.String("email", logger.MaskEmail(created.Email)),
	)

	if err := s.events.PublishUserRegistered(ctx, domain.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       created.ID,
		Username:     created.Username,
		Email:        logger.MaskEmail(created.Email),
		Method:       "oauth:" + providerName,
		RegisteredAt: created.RegisteredAt,
	}); err != nil {
		s.logger.Warn("Failed to publish registration event", zap.Error(err))
	}

	return &created, nil
}

var usernameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// uniqueUsername derives a username from the provider profile and suffixes it
// with a counter until it no longer collides.
func (s *OAuthService) uniqueUsername(ctx context.Context, profile *domain.OAuthProfile) (string, error) {
	base := profile.Login
	if base == "" {
		base = profile.Name
	}
	base = usernameSanitizer.ReplaceAllString(base, "")
	if len(base) > 24 {
		base = base[:24]
	}
	if len(base) < 3 {
		base = "user" + base
	}

	for i := 0; i < 50; i++ {
		candidate := base
		if i > 0 {
			candidate = base + strconv.Itoa(i)
		}

		_, err := s.users.GetByIdentifier(ctx, candidate)
		if errors.Is(err, repository.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check username availability: %w", err)
		}
	}

	return base + "_" + uuid.NewString()[:8], nil
}
