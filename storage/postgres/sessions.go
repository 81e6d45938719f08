package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/launchkit/pkg/pg"
	"github.com/dmitrymomot/launchkit/svc/session"
)

func (s *Storage) CreateSession(ctx context.Context, sess session.Session) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (token, user_id, auth_method, identity_verified, provider, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sess.Token, sess.UserID, sess.AuthMethod, sess.IdentityVerified, sess.Provider, sess.CreatedAt, sess.ExpiresAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to create session: %w", err)
	}
	return nil
}

func (s *Storage) FindSession(ctx context.Context, token string) (session.Session, error) {
	var sess session.Session
	err := s.pool.QueryRow(ctx,
		`SELECT token, user_id, auth_method, identity_verified, provider, created_at, expires_at
		 FROM sessions WHERE token = $1`, token).
		Scan(&sess.Token, &sess.UserID, &sess.AuthMethod, &sess.IdentityVerified, &sess.Provider, &sess.CreatedAt, &sess.ExpiresAt)
	if pg.IsNotFound(err) {
		return session.Session{}, session.ErrNoSession
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("postgres: failed to find session: %w", err)
	}
	return sess, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete session: %w", err)
	}
	return nil
}

func (s *Storage) DeleteUserProviderSessions(ctx context.Context, userID uuid.UUID, provider string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM sessions WHERE user_id = $1 AND provider = $2`, userID, provider)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete provider sessions: %w", err)
	}
	return nil
}
