// Package authweb exposes the authentication flows over HTTP: password
// registration and login, email verification, password recovery, and the
// OAuth connect/disconnect handshake. Handlers stay thin; all rules live
// in svc/auth and svc/session.
package authweb
