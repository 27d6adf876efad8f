package security

import (
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

const (
	minPasswordLength = 8
	minZxcvbnScore    = 2
)

// PasswordValidationError represents a single password policy violation.
type PasswordValidationError struct {
	Code    string
	Message string
}

// Error implements error for PasswordValidationError.
func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordPolicy validates candidate passwords against length and strength
// requirements. User inputs (username, email) are fed to the strength
// estimator so passwords derived from them score poorly.
type PasswordPolicy struct {
	minLength int
	minScore  int
}

// NewPasswordPolicy returns the service password policy.
func NewPasswordPolicy() *PasswordPolicy {
	return &PasswordPolicy{
		minLength: minPasswordLength,
		minScore:  minZxcvbnScore,
	}
}

// Validate returns the first policy violation, nil if the password passes.
func (p *PasswordPolicy) Validate(password string, userInputs ...string) error {
	if p == nil {
		return fmt.Errorf("password policy not configured")
	}

	if len([]rune(password)) < p.minLength {
		return &PasswordValidationError{
			Code:    "min_length",
			Message: fmt.Sprintf("password must be at least %d characters long", p.minLength),
		}
	}

	inputs := make([]string, 0, len(userInputs))
	for _, in := range userInputs {
		if in != "" {
			inputs = append(inputs, in)
		}
	}

	result := zxcvbn.PasswordStrength(password, inputs)
	if result.Score < p.minScore {
		return &PasswordValidationError{
			Code:    "weak_password",
			Message: "password is too predictable; choose a stronger one",
		}
	}

	return nil
}
