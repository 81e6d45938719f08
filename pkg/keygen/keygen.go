// Package keygen generates the opaque secrets used across the application:
// API keys, password-reset tokens and session identifiers. All of them are
// 32 bytes of crypto/rand output; the encoding differs per use.
package keygen

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

const secretLen = 32

// ErrRandomSource indicates the system randomness source failed. This is a
// fatal condition, not a retryable one.
var ErrRandomSource = errors.New("keygen: random source failed")

// APIKey returns a new 64-character hex API key. Only the SHA-256 hash is
// stored; keep LastFour for display.
func APIKey() (string, error) {
	return randomHex()
}

// ResetToken returns a new 64-character hex password-reset token. The token
// doubles as the lookup secret in the reset link; single-use is guaranteed
// by deleting the backing row on consumption, not by the token itself.
func ResetToken() (string, error) {
	return randomHex()
}

// SessionToken returns a new URL-safe session identifier.
func SessionToken() (string, error) {
	b := make([]byte, secretLen)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrRandomSource, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashKey returns the hex-encoded SHA-256 digest of a key, the only form an
// API key is persisted in.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// LastFour returns the trailing four characters of a key for display
// ("sk-...a1b2"). Shorter inputs are returned unchanged.
func LastFour(key string) string {
	if len(key) <= 4 {
		return key
	}
	return key[len(key)-4:]
}

func randomHex() (string, error) {
	b := make([]byte, secretLen)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrRandomSource, err)
	}
	return hex.EncodeToString(b), nil
}
