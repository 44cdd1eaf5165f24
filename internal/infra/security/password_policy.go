package security

import (
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
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

// PasswordPolicy enforces the minimum requirements a new password must meet
// and scores candidate passwords for advisory strength reporting.
type PasswordPolicy struct {
	minLength int
}

// NewPasswordPolicy constructs a policy with the given minimum length.
func NewPasswordPolicy(minLength int) *PasswordPolicy {
	if minLength < 1 {
		minLength = 1
	}
	return &PasswordPolicy{minLength: minLength}
}

// Validate returns a violation when the password fails the policy. Only the
// length requirement is a hard rejection; strength is advisory via Score.
func (p *PasswordPolicy) Validate(password string) error {
	if len([]rune(password)) < p.minLength {
		return &PasswordValidationError{
			Code:    "min_length",
			Message: fmt.Sprintf("password must be at least %d characters long", p.minLength),
		}
	}
	return nil
}

// Score rates the password from 0 (guessable) to 4 (strong), penalizing
// passwords derived from the user's own identifiers.
func (p *PasswordPolicy) Score(password string, userInputs ...string) int {
	inputs := make([]string, 0, len(userInputs))
	for _, in := range userInputs {
		if in != "" {
			inputs = append(inputs, in)
		}
	}
	return zxcvbn.PasswordStrength(password, inputs).Score
}
