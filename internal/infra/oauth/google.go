package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/allahbobax/boolean-api/internal/core/domain"
	"github.com/allahbobax/boolean-api/internal/infra/config"
)

// GoogleProvider implements the Google authorization-code exchange.
type GoogleProvider struct {
	cfg    config.OAuthProviderSettings
	client *http.Client
}

// NewGoogleProvider constructs the Google strategy.
func NewGoogleProvider(cfg config.OAuthProviderSettings, client *http.Client) *GoogleProvider {
	return &GoogleProvider{cfg: cfg, client: client}
}

// Name returns the typed provider identifier.
func (p *GoogleProvider) Name() domain.OAuthProvider {
	return domain.ProviderGoogle
}

// AuthorizeURL builds the consent page redirect carrying the signed state.
func (p *GoogleProvider) AuthorizeURL(state string) string {
	q := url.Values{
		"client_id":     {p.cfg.ClientID},
		"redirect_uri":  {p.cfg.RedirectURI},
		"response_type": {"code"},
		"scope":         {"profile email"},
		"access_type":   {"offline"},
		"state":         {state},
	}
	return "https://accounts.google.com/o/oauth2/v2/auth?" + q.Encode()
}

// Exchange trades the code for an access token and fetches userinfo.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*domain.OAuthProfile, error) {
	form := url.Values{
		"code":          {code},
		"client_id":     {p.cfg.ClientID},
		"client_secret": {p.cfg.ClientSecret},
		"redirect_uri":  {p.cfg.RedirectURI},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://oauth2.googleapis.com/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("google: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	if err := p.doJSON(req, &tokens); err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("google: token exchange failed")
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("google: build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)

	var profile struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := p.doJSON(req, &profile); err != nil {
		return nil, err
	}

	var avatar *string
	if profile.Picture != "" {
		avatar = &profile.Picture
	}

	return &domain.OAuthProfile{
		ID:     profile.ID,
		Email:  profile.Email,
		Name:   profile.Name,
		Avatar: avatar,
	}, nil
}

func (p *GoogleProvider) doJSON(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("google: %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("google: decode %s response: %w", req.URL.Path, err)
	}

	return nil
}

var _ Provider = (*GoogleProvider)(nil)
