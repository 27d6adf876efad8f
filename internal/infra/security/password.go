package security

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is tuned for short-lived request handlers; raising it is safe
// because existing hashes verify at their stored cost.
const bcryptCost = 10

// ErrLegacyPasswordHash indicates the stored hash predates the bcrypt
// migration. Legacy formats are rejected outright; those users must go
// through password reset.
var ErrLegacyPasswordHash = errors.New("legacy password hash format")

// HashPassword generates a bcrypt hash for the provided password.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword compares the provided password against a stored hash.
// Only bcrypt hashes are accepted.
func VerifyPassword(password, stored string) (bool, error) {
	if password == "" || stored == "" {
		return false, nil
	}

	if !strings.HasPrefix(stored, "$2") {
		return false, ErrLegacyPasswordHash
	}

	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("verify password: %w", err)
	}

	return true, nil
}
