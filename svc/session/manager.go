package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/launchkit/pkg/cookie"
	"github.com/dmitrymomot/launchkit/pkg/keygen"
	"github.com/dmitrymomot/launchkit/pkg/logger"
)

// Store persists sessions. The database is authoritative; there is no
// in-process session cache.
type Store interface {
	CreateSession(ctx context.Context, s Session) error
	FindSession(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
	// DeleteUserProviderSessions removes every session the user established
	// through the given provider. Used when that provider is disconnected.
	DeleteUserProviderSessions(ctx context.Context, userID uuid.UUID, provider string) error
}

// Manager creates, resolves, and destroys sessions, owning the cookie
// transport on both sides.
type Manager struct {
	store   Store
	cookies *cookie.Manager
	cfg     Config
	log     *slog.Logger
	now     func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) { m.log = log }
}

// WithClock overrides the time source. Tests use it to cross expiry
// boundaries without sleeping.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a session manager.
func NewManager(store Store, cookies *cookie.Manager, cfg Config, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:   store,
		cookies: cookies,
		cfg:     cfg,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start creates a session row and sets the session cookie. The caller has
// already computed identityVerified (always true for oauth, credential
// verifiedAt for email).
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, userID uuid.UUID, method AuthMethod, provider string, identityVerified bool) (Session, error) {
	if !method.Valid() {
		return Session{}, ErrInvalidMethod
	}

	token, err := keygen.SessionToken()
	if err != nil {
		return Session{}, fmt.Errorf("session: failed to generate token: %w", err)
	}

	now := m.now()
	s := Session{
		Token:            token,
		UserID:           userID,
		AuthMethod:       method,
		IdentityVerified: identityVerified,
		Provider:         provider,
		CreatedAt:        now,
		ExpiresAt:        now.Add(m.cfg.TTL),
	}
	if err := m.store.CreateSession(ctx, s); err != nil {
		return Session{}, fmt.Errorf("session: failed to persist: %w", err)
	}

	m.cookies.SetSigned(w, m.cfg.CookieName, token,
		cookie.WithMaxAge(int(m.cfg.TTL.Seconds())),
		cookie.WithSecure(m.cfg.Secure),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
	)

	m.log.InfoContext(ctx, "session started",
		logger.UserID(userID.String()),
		slog.String("auth_method", string(method)),
	)
	return s, nil
}

// Load resolves the request's session from the cookie. Expired rows are
// deleted on sight; both absence and expiry come back as ErrNoSession-family
// errors so callers can redirect to login.
func (m *Manager) Load(ctx context.Context, r *http.Request) (Session, error) {
	token, err := m.cookies.GetSigned(r, m.cfg.CookieName)
	if err != nil {
		return Session{}, ErrNoSession
	}

	s, err := m.store.FindSession(ctx, token)
	if err != nil {
		return Session{}, ErrNoSession
	}

	if s.Expired(m.now()) {
		_ = m.store.DeleteSession(ctx, token)
		return Session{}, errors.Join(ErrNoSession, ErrSessionExpired)
	}
	return s, nil
}

// Destroy deletes the current session row and clears the cookie. Safe to
// call without an active session.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token, err := m.cookies.GetSigned(r, m.cfg.CookieName)
	if err == nil {
		if err := m.store.DeleteSession(ctx, token); err != nil {
			return fmt.Errorf("session: failed to delete: %w", err)
		}
	}
	m.cookies.Delete(w, m.cfg.CookieName)
	return nil
}

// DestroyProviderSessions revokes every session the user holds through
// provider. The current request's cookie is cleared only if it belonged to
// that provider, which the caller signals via clearCookie.
func (m *Manager) DestroyProviderSessions(ctx context.Context, w http.ResponseWriter, userID uuid.UUID, provider string, clearCookie bool) error {
	if err := m.store.DeleteUserProviderSessions(ctx, userID, provider); err != nil {
		return fmt.Errorf("session: failed to revoke provider sessions: %w", err)
	}
	if clearCookie {
		m.cookies.Delete(w, m.cfg.CookieName)
	}
	return nil
}
