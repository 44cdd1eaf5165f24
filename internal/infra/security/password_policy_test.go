package security

import (
	"errors"
	"testing"
)

func TestPasswordPolicyValidate(t *testing.T) {
	policy := NewPasswordPolicy(6)

	if err := policy.Validate("abc12"); err == nil {
		t.Fatal("expected rejection for password below minimum length")
	} else {
		var violation *PasswordValidationError
		if !errors.As(err, &violation) {
			t.Fatalf("expected PasswordValidationError, got %T", err)
		}
		if violation.Code != "min_length" {
			t.Fatalf("unexpected violation code %q", violation.Code)
		}
	}

	if err := policy.Validate("abc123"); err != nil {
		t.Fatalf("expected six characters to pass, got %v", err)
	}

	// Multibyte runes count as single characters.
	if err := policy.Validate("пароль"); err != nil {
		t.Fatalf("expected six runes to pass, got %v", err)
	}
}

func TestPasswordPolicyScore(t *testing.T) {
	policy := NewPasswordPolicy(6)

	weak := policy.Score("123456")
	strong := policy.Score("br1ght-h0rizon-over-the-bay")
	if weak >= strong {
		t.Fatalf("expected weak score %d below strong score %d", weak, strong)
	}

	// The user's own identifiers drag the score down.
	biased := policy.Score("alice@example.com1", "alice@example.com", "")
	neutral := policy.Score("alice@example.com1")
	if biased > neutral {
		t.Fatalf("expected user inputs to penalize, got %d > %d", biased, neutral)
	}
}
