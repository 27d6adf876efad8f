package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSessionToken is the only failure callers of Parse ever see.
// Malformed, tampered and expired tokens are deliberately indistinguishable.
var ErrInvalidSessionToken = errors.New("invalid session token")

const defaultSessionTokenTTL = 7 * 24 * time.Hour

// SessionClaims is the self-contained session credential payload.
type SessionClaims struct {
	UserID  string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// SessionSigner mints and verifies stateless bearer session tokens with a
// single symmetric secret and a single algorithm. There is no server-side
// revocation list: a compromised token stays valid until expiry or until the
// secret is rotated.
type SessionSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionSigner constructs a signer for the supplied secret.
func NewSessionSigner(secret, issuer string, ttl time.Duration) (*SessionSigner, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: signing secret is required")
	}
	if ttl <= 0 {
		ttl = defaultSessionTokenTTL
	}

	return &SessionSigner{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock overrides the time source (testing only).
func (s *SessionSigner) WithClock(now func() time.Time) *SessionSigner {
	if now != nil {
		s.now = now
	}
	return s
}

// Mint issues a signed session token for the user.
func (s *SessionSigner) Mint(userID, email string, isAdmin bool) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("jwt: user id is required")
	}

	now := s.now().UTC()
	claims := SessionClaims{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}

// Parse validates signature and expiry together and returns the claims.
// Any failure yields ErrInvalidSessionToken, never a partial result.
func (s *SessionSigner) Parse(token string) (*SessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidSessionToken
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		// Pinning the method closes the algorithm-confusion surface.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil || parsed == nil || !parsed.Valid {
		return nil, ErrInvalidSessionToken
	}

	if strings.TrimSpace(claims.UserID) == "" {
		return nil, ErrInvalidSessionToken
	}

	return claims, nil
}
