package session

import (
	"time"

	"github.com/google/uuid"
)

// AuthMethod is how the session was established.
type AuthMethod string

const (
	AuthMethodEmail AuthMethod = "email"
	AuthMethodOAuth AuthMethod = "oauth"
)

func (m AuthMethod) Valid() bool {
	switch m {
	case AuthMethodEmail, AuthMethodOAuth:
		return true
	}
	return false
}

// Session is the server-side session record. Token is the opaque identifier
// the cookie carries; everything else never leaves the server.
type Session struct {
	Token            string
	UserID           uuid.UUID
	AuthMethod       AuthMethod
	IdentityVerified bool
	Provider         string
	CreatedAt        time.Time
	ExpiresAt        time.Time
}

// Expired reports whether the session is past its expiry.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// NeedsVerification reports whether the unverified-email gate applies.
// OAuth sessions are pre-verified by the provider.
func (s Session) NeedsVerification() bool {
	return s.AuthMethod == AuthMethodEmail && !s.IdentityVerified
}
