package validator

import (
	"net/mail"
	"strings"
	"unicode"
)

// Required fails when the value is empty after trimming.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "is required"},
	}
}

// ValidEmail checks RFC 5322 address syntax. The address must already be
// normalized (see sanitizer.NormalizeEmail).
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if value == "" {
				return false
			}
			addr, err := mail.ParseAddress(value)
			return err == nil && addr.Address == value
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

// PasswordStrengthConfig tunes StrongPassword.
type PasswordStrengthConfig struct {
	MinLength      int
	MaxLength      int
	MinCharClasses int // of: lowercase, uppercase, digit, special
}

// DefaultPasswordStrength mirrors the interactive-login defaults: long
// enough to resist online guessing without frustrating signup.
func DefaultPasswordStrength() PasswordStrengthConfig {
	return PasswordStrengthConfig{MinLength: 8, MaxLength: 128, MinCharClasses: 2}
}

// StrongPassword enforces length bounds and character-class diversity.
func StrongPassword(field, value string, cfg PasswordStrengthConfig) Rule {
	return Rule{
		Check: func() bool {
			n := len(value)
			if n < cfg.MinLength || (cfg.MaxLength > 0 && n > cfg.MaxLength) {
				return false
			}
			return charClasses(value) >= cfg.MinCharClasses
		},
		Error: ValidationError{Field: field, Message: "does not meet password requirements"},
	}
}

// Matching fails when two fields differ, e.g. password confirmation.
func Matching(field, value, other string) Rule {
	return Rule{
		Check: func() bool { return value == other },
		Error: ValidationError{Field: field, Message: "does not match"},
	}
}

// NumericCode checks an exact-length string of ASCII digits, used for
// emailed one-time codes.
func NumericCode(field, value string, digits int) Rule {
	return Rule{
		Check: func() bool {
			if len(value) != digits {
				return false
			}
			for _, r := range value {
				if r < '0' || r > '9' {
					return false
				}
			}
			return true
		},
		Error: ValidationError{Field: field, Message: "must be a numeric code"},
	}
}

func charClasses(s string) int {
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	n := 0
	for _, ok := range []bool{lower, upper, digit, special} {
		if ok {
			n++
		}
	}
	return n
}
