package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

const (
	// Digits is the length of generated codes.
	Digits = 6
	// SecretSize is the raw secret length in bytes (RFC 4226 recommends 160 bits).
	SecretSize = 20
)

// secretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding.
var secretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateSecret returns a new Base32-encoded 160-bit secret.
func GenerateSecret() (string, error) {
	raw := make([]byte, SecretSize)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Join(ErrSecretGeneration, err)
	}
	return b32.EncodeToString(raw), nil
}

// GenerateCode derives the 6-digit code for the current time window. The
// period is the code's validity window; email verification uses the token
// TTL as the period so a code stays stable for the whole TTL.
func GenerateCode(secret string, period time.Duration) (string, error) {
	return GenerateCodeAt(secret, period, time.Now())
}

// GenerateCodeAt derives the code for the window containing t. Exposed for
// tests that need codes from past or future windows.
func GenerateCodeAt(secret string, period time.Duration, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	interval := periodSeconds(period)
	counter := t.Unix() / interval
	return fmt.Sprintf("%0*d", Digits, hotp(key, counter, Digits)), nil
}

// Validate reports whether code matches the secret within the current
// window, accepting one adjacent window of drift. A code is therefore
// usable for up to one full period; single-use semantics belong to the
// caller (delete or mark the backing record).
func Validate(secret, code string, period time.Duration) (bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	code = strings.TrimSpace(code)
	if !regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, Digits)).MatchString(code) {
		return false, ErrInvalidCode
	}

	interval := periodSeconds(period)
	counter := time.Now().Unix() / interval
	for i := int64(-1); i <= 1; i++ {
		if fmt.Sprintf("%0*d", Digits, hotp(key, counter+i, Digits)) == code {
			return true, nil
		}
	}
	return false, nil
}

// hotp implements the RFC 4226 HMAC-based one-time password algorithm.
func hotp(key []byte, counter int64, digits int) int {
	msg := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		msg[i] = byte(counter & 0xff)
		counter >>= 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(msg)
	sum := mac.Sum(nil)

	// Dynamic truncation per RFC 4226 section 5.3.
	offset := sum[len(sum)-1] & 0x0f
	v := (int(sum[offset]&0x7f) << 24) |
		(int(sum[offset+1]) << 16) |
		(int(sum[offset+2]) << 8) |
		int(sum[offset+3])

	return v % int(math.Pow10(digits))
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !secretKeyRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := b32.DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

func periodSeconds(period time.Duration) int64 {
	s := int64(period / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}
