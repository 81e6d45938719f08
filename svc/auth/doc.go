// Package auth is the authentication orchestrator: registration and login
// with email+password, TOTP-based email verification, password reset,
// OAuth identity linking, and profile avatars.
//
// The Service struct is constructed once at process start with injected
// collaborators (storage, mailer, provider adapters); there are no
// package-level singletons. Session creation stays outside this package:
// handlers call the service, then hand the result to the session manager.
package auth
