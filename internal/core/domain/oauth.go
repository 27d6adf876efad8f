package domain

import "fmt"

// OAuthProvider enumerates supported external identity providers.
type OAuthProvider string

const (
	ProviderGitHub OAuthProvider = "github"
	ProviderGoogle OAuthProvider = "google"
	ProviderYandex OAuthProvider = "yandex"
)

// ParseOAuthProvider converts a request parameter into a typed provider.
func ParseOAuthProvider(name string) (OAuthProvider, error) {
	switch OAuthProvider(name) {
	case ProviderGitHub, ProviderGoogle, ProviderYandex:
		return OAuthProvider(name), nil
	default:
		return "", fmt.Errorf("unsupported oauth provider %q", name)
	}
}

// OAuthProfile is the normalized identity returned by a provider exchange.
type OAuthProfile struct {
	ID     string
	Email  string
	Name   string
	Login  string
	Avatar *string
}

// StatePayload carries the application data round-tripped through the OAuth
// redirect. Integrity rests entirely on the StateSigner signature; nothing
// here is persisted server-side.
type StatePayload struct {
	Source string `json:"source"`
	HWID   string `json:"hwid,omitempty"`
}

// Empty reports whether the payload carries no data (failed decode).
func (p StatePayload) Empty() bool {
	return p.Source == "" && p.HWID == ""
}
