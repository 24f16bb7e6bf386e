package service

import (
	"unicode"

	"github.com/aquaponto/aquaponto/internal/config"
)

// validatePassword checks a password against the configured policy
func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	minLength := policy.MinLength
	if minLength <= 0 {
		minLength = 8
	}
	if len(password) < minLength {
		return ErrPasswordTooWeak
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if policy.RequireUpper && !hasUpper {
		return ErrPasswordTooWeak
	}
	if policy.RequireLower && !hasLower {
		return ErrPasswordTooWeak
	}
	if policy.RequireNumber && !hasNumber {
		return ErrPasswordTooWeak
	}
	if policy.RequireSpecial && !hasSpecial {
		return ErrPasswordTooWeak
	}
	return nil
}
