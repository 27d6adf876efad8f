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

// YandexProvider implements the Yandex authorization-code exchange.
type YandexProvider struct {
	cfg    config.OAuthProviderSettings
	client *http.Client
}

// NewYandexProvider constructs the Yandex strategy.
func NewYandexProvider(cfg config.OAuthProviderSettings, client *http.Client) *YandexProvider {
	return &YandexProvider{cfg: cfg, client: client}
}

// Name returns the typed provider identifier.
func (p *YandexProvider) Name() domain.OAuthProvider {
	return domain.ProviderYandex
}

// AuthorizeURL builds the consent page redirect carrying the signed state.
func (p *YandexProvider) AuthorizeURL(state string) string {
	q := url.Values{
		"response_type": {"code"},
		"client_id":     {p.cfg.ClientID},
		"state":         {state},
	}
	return "https://oauth.yandex.ru/authorize?" + q.Encode()
}

// Exchange trades the code for an access token and fetches the user info.
func (p *YandexProvider) Exchange(ctx context.Context, code string) (*domain.OAuthProfile, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {p.cfg.ClientID},
		"client_secret": {p.cfg.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://oauth.yandex.ru/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("yandex: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	if err := p.doJSON(req, &tokens); err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("yandex: token exchange failed")
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, "https://login.yandex.ru/info?format=json", nil)
	if err != nil {
		return nil, fmt.Errorf("yandex: build info request: %w", err)
	}
	req.Header.Set("Authorization", "OAuth "+tokens.AccessToken)

	var profile struct {
		ID              string `json:"id"`
		DefaultEmail    string `json:"default_email"`
		DisplayName     string `json:"display_name"`
		Login           string `json:"login"`
		DefaultAvatarID string `json:"default_avatar_id"`
	}
	if err := p.doJSON(req, &profile); err != nil {
		return nil, err
	}

	email := profile.DefaultEmail
	if email == "" {
		email = profile.ID + "@yandex.oauth"
	}

	name := profile.DisplayName
	if name == "" {
		name = profile.Login
	}

	var avatar *string
	if profile.DefaultAvatarID != "" {
		u := fmt.Sprintf("https://avatars.yandex.net/get-yapic/%s/islands-200", profile.DefaultAvatarID)
		avatar = &u
	}

	return &domain.OAuthProfile{
		ID:     profile.ID,
		Email:  email,
		Name:   name,
		Login:  profile.Login,
		Avatar: avatar,
	}, nil
}

func (p *YandexProvider) doJSON(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("yandex: %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("yandex: decode %s response: %w", req.URL.Path, err)
	}

	return nil
}

var _ Provider = (*YandexProvider)(nil)
