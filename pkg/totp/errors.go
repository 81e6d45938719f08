package totp

import "errors"

var (
	ErrSecretGeneration = errors.New("totp: failed to generate secret")
	ErrInvalidSecret    = errors.New("totp: invalid secret")
	ErrInvalidCode      = errors.New("totp: invalid code format")
)
