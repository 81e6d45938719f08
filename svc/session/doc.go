// Package session manages database-backed sessions. The browser cookie
// carries only a signed opaque token; all session content lives server-side,
// which keeps revocation immediate and tampering impossible.
//
// Middleware in this package gates routes on two levels: having a session at
// all, and having a verified identity. OAuth sessions are always verified;
// email-password sessions are verified once the email code is confirmed.
package session
