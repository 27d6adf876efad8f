package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/allahbobax/boolean-api/internal/core/domain"
)

const stateMaxAge = 10 * time.Minute

// Legacy clients send these bare literals instead of a signed state token.
// They decode to a source-only payload and bypass signature checks.
const (
	legacyStateLauncher = "launcher"
	legacyStateWeb      = "web"
)

type signedState struct {
	Source   string `json:"source"`
	HWID     string `json:"hwid,omitempty"`
	Nonce    string `json:"nonce"`
	IssuedAt int64  `json:"iat"`
	Sig      string `json:"sig"`
}

// StateSigner signs and verifies the opaque state parameter carried through
// OAuth redirects. Nothing is persisted server-side: forgery resistance comes
// from the HMAC, replay resistance from the bounded timestamp window.
type StateSigner struct {
	secret []byte
	now    func() time.Time
}

// NewStateSigner constructs a signer using the server state secret.
func NewStateSigner(secret string) (*StateSigner, error) {
	if secret == "" {
		return nil, fmt.Errorf("state signer: secret is required")
	}
	return &StateSigner{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

// WithClock overrides the time source (testing only).
func (s *StateSigner) WithClock(now func() time.Time) *StateSigner {
	if now != nil {
		s.now = now
	}
	return s
}

// Encode attaches a nonce and the current timestamp to the payload, signs the
// combined structure and serializes it into a URL-safe token.
func (s *StateSigner) Encode(payload domain.StatePayload) (string, error) {
	state := signedState{
		Source:   payload.Source,
		HWID:     payload.HWID,
		Nonce:    uuid.NewString(),
		IssuedAt: s.now().Unix(),
	}
	state.Sig = s.sign(state)

	raw, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("state signer: marshal: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode verifies the signature and freshness of a state token. Any failure
// returns an empty payload; callers must treat that as an invalid flow.
func (s *StateSigner) Decode(token string) domain.StatePayload {
	switch token {
	case legacyStateLauncher:
		return domain.StatePayload{Source: legacyStateLauncher}
	case legacyStateWeb:
		return domain.StatePayload{Source: legacyStateWeb}
	case "":
		return domain.StatePayload{}
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return domain.StatePayload{}
	}

	var state signedState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.StatePayload{}
	}

	expected := s.sign(state)
	if !hmac.Equal([]byte(expected), []byte(state.Sig)) {
		return domain.StatePayload{}
	}

	if s.now().Sub(time.Unix(state.IssuedAt, 0)) > stateMaxAge {
		return domain.StatePayload{}
	}

	return domain.StatePayload{Source: state.Source, HWID: state.HWID}
}

func (s *StateSigner) sign(state signedState) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(state.Source))
	mac.Write([]byte{0})
	mac.Write([]byte(state.HWID))
	mac.Write([]byte{0})
	mac.Write([]byte(state.Nonce))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatInt(state.IssuedAt, 10)))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
