package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/allahbobax/boolean-api/internal/core/domain"
	"github.com/allahbobax/boolean-api/internal/infra/config"
)

const githubUserAgent = "Boolean-API"

// GitHubProvider implements the GitHub authorization-code exchange.
type GitHubProvider struct {
	cfg    config.OAuthProviderSettings
	client *http.Client
}

// NewGitHubProvider constructs the GitHub strategy.
func NewGitHubProvider(cfg config.OAuthProviderSettings, client *http.Client) *GitHubProvider {
	return &GitHubProvider{cfg: cfg, client: client}
}

// Name returns the typed provider identifier.
func (p *GitHubProvider) Name() domain.OAuthProvider {
	return domain.ProviderGitHub
}

// AuthorizeURL builds the consent page redirect carrying the signed state.
func (p *GitHubProvider) AuthorizeURL(state string) string {
	q := url.Values{
		"client_id":    {p.cfg.ClientID},
		"redirect_uri": {p.cfg.RedirectURI},
		"scope":        {"read:user user:email"},
		"state":        {state},
	}
	return "https://github.com/login/oauth/authorize?" + q.Encode()
}

// Exchange trades the code for an access token and fetches the user profile.
// GitHub may hide the primary email on the profile; a second call to the
// emails endpoint recovers it.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*domain.OAuthProfile, error) {
	body, err := json.Marshal(map[string]string{
		"client_id":     p.cfg.ClientID,
		"client_secret": p.cfg.ClientSecret,
		"code":          code,
	})
	if err != nil {
		return nil, fmt.Errorf("github: marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://github.com/login/oauth/access_token", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("github: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	if err := p.doJSON(req, &tokens); err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("github: token exchange failed")
	}

	var profile struct {
		ID        int64   `json:"id"`
		Email     *string `json:"email"`
		Name      string  `json:"name"`
		Login     string  `json:"login"`
		AvatarURL string  `json:"avatar_url"`
	}
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/user", nil)
	if err != nil {
		return nil, fmt.Errorf("github: build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	req.Header.Set("User-Agent", githubUserAgent)
	if err := p.doJSON(req, &profile); err != nil {
		return nil, err
	}

	email := ""
	if profile.Email != nil {
		email = *profile.Email
	}
	if email == "" {
		email, err = p.fetchPrimaryEmail(ctx, tokens.AccessToken)
		if err != nil {
			return nil, err
		}
	}

	name := profile.Name
	if name == "" {
		name = profile.Login
	}

	var avatar *string
	if profile.AvatarURL != "" {
		avatar = &profile.AvatarURL
	}

	return &domain.OAuthProfile{
		ID:     strconv.FormatInt(profile.ID, 10),
		Email:  email,
		Name:   name,
		Login:  profile.Login,
		Avatar: avatar,
	}, nil
}

func (p *GitHubProvider) fetchPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/user/emails", nil)
	if err != nil {
		return "", fmt.Errorf("github: build emails request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("User-Agent", githubUserAgent)

	var emails []struct {
		Email   string `json:"email"`
		Primary bool   `json:"primary"`
	}
	if err := p.doJSON(req, &emails); err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary {
			return e.Email, nil
		}
	}

	return "", nil
}

func (p *GitHubProvider) doJSON(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("github: %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("github: decode %s response: %w", req.URL.Path, err)
	}

	return nil
}

var _ Provider = (*GitHubProvider)(nil)
