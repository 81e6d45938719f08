package session

import "errors"

var (
	ErrNoSession      = errors.New("session: no session")
	ErrSessionExpired = errors.New("session: session expired")
	ErrInvalidMethod  = errors.New("session: invalid auth method")
)
