// Package totp implements RFC 4226/6238 one-time codes with a configurable
// period. Unlike classic authenticator MFA (30s windows), this application
// uses the verification-token TTL as the period so an emailed code remains
// valid until the token expires. Replay protection comes from consuming the
// backing token record, not from the time window.
package totp
