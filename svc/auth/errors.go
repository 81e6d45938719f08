package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrEmailTaken         = errors.New("auth: email already registered with a password")
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrNoPasswordLogin    = errors.New("auth: account has no password login")

	ErrInvalidCode      = errors.New("auth: invalid or expired verification code")
	ErrInvalidResetLink = errors.New("auth: invalid or expired reset link")
	ErrAlreadyVerified  = errors.New("auth: email already verified")

	ErrLastAuthMethod = errors.New("auth: cannot remove the only remaining login method")
	ErrNotLinked      = errors.New("auth: provider is not linked to this account")

	ErrUnknownProvider = errors.New("auth: unknown oauth provider")
	ErrInvalidOAuth    = errors.New("auth: oauth code exchange failed")
	ErrNoPrimaryEmail  = errors.New("auth: provider returned no usable email")

	ErrHashingFailed = errors.New("auth: password hashing failed")
)

// CooldownError is returned when a verification resend arrives before the
// cooldown elapsed. It satisfies the RetryAfter contract the HTTP layer
// turns into a 429 response.
type CooldownError struct {
	Wait time.Duration
}

func (e CooldownError) Error() string {
	return fmt.Sprintf("auth: please wait %d seconds before requesting another code", int(e.Wait.Seconds()))
}

// RetryAfter returns how long the caller should wait.
func (e CooldownError) RetryAfter() time.Duration {
	return e.Wait
}
