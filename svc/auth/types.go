package auth

import (
	"time"

	"github.com/google/uuid"
)

// OnboardingStatus tracks how far a user has progressed through initial
// setup. Advanced by the tenant service when the first organization exists.
type OnboardingStatus string

const (
	OnboardingNotStarted OnboardingStatus = "not_started"
	OnboardingInProgress OnboardingStatus = "in_progress"
	OnboardingComplete   OnboardingStatus = "complete"
)

func (s OnboardingStatus) Valid() bool {
	switch s {
	case OnboardingNotStarted, OnboardingInProgress, OnboardingComplete:
		return true
	}
	return false
}

// User is an account. Email is stored lowercased and unique
// case-insensitively. Users are never hard-deleted.
type User struct {
	ID           uuid.UUID
	Email        string
	FirstName    string
	LastName     string
	Onboarding   OnboardingStatus
	DefaultOrgID uuid.UUID
	AvatarPath   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credential is a user's password login. At most one per user; absence
// means the account is OAuth-only.
type Credential struct {
	UserID       uuid.UUID
	PasswordHash string
	VerifiedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Verified reports whether the email behind this credential was confirmed.
func (c Credential) Verified() bool {
	return c.VerifiedAt != nil
}

// Identity links a user to one external OAuth provider account. Unique per
// (provider, provider user id).
type Identity struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Provider       string
	ProviderUserID string
	Email          string
	CreatedAt      time.Time
}

// TokenType distinguishes the two verification-token flows.
type TokenType string

const (
	TokenTypeEmail         TokenType = "email"
	TokenTypePasswordReset TokenType = "password_reset"
)

func (t TokenType) Valid() bool {
	switch t {
	case TokenTypeEmail, TokenTypePasswordReset:
		return true
	}
	return false
}

// VerificationToken is the single live token per (user, type). For the
// email type, Secret is a TOTP seed and Code a derived 6-digit code; for
// password reset, Secret and Code are the same 32-byte hex value and the
// row is deleted on use.
type VerificationToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      TokenType
	Secret    string
	Code      string
	Verified  bool
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the token can still be consumed.
func (t VerificationToken) Active(now time.Time) bool {
	return !t.Verified && t.ExpiresAt.After(now)
}

// AuthMethods summarizes how a user can log in. Used to enforce the
// at-least-one-method invariant on disconnect.
type AuthMethods struct {
	HasPassword bool
	Providers   []string
}

// Count returns the total number of login methods.
func (m AuthMethods) Count() int {
	n := len(m.Providers)
	if m.HasPassword {
		n++
	}
	return n
}

// CanDisconnect reports whether removing provider still leaves a way in.
func (m AuthMethods) CanDisconnect(provider string) bool {
	remaining := 0
	if m.HasPassword {
		remaining++
	}
	for _, p := range m.Providers {
		if p != provider {
			remaining++
		}
	}
	return remaining >= 1
}
