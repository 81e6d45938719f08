package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/launchkit/pkg/pg"
	"github.com/dmitrymomot/launchkit/svc/auth"
)

// UpsertToken inserts the token or, when a row for (user, type) already
// exists, replaces its secret and lifetime in place. The conflict target is
// the unique index, so concurrent resends collapse into one live token.
func (s *Storage) UpsertToken(ctx context.Context, t auth.VerificationToken) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO verification_tokens (id, user_id, type, secret, code, verified, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id, type) DO UPDATE SET
			secret = EXCLUDED.secret,
			code = EXCLUDED.code,
			verified = EXCLUDED.verified,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at`,
		t.ID, t.UserID, t.Type, t.Secret, t.Code, t.Verified, t.ExpiresAt, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to upsert token: %w", err)
	}
	return nil
}

func (s *Storage) FindToken(ctx context.Context, userID uuid.UUID, typ auth.TokenType) (auth.VerificationToken, error) {
	var t auth.VerificationToken
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, type, secret, code, verified, expires_at, created_at, updated_at
		 FROM verification_tokens WHERE user_id = $1 AND type = $2`, userID, typ).
		Scan(&t.ID, &t.UserID, &t.Type, &t.Secret, &t.Code, &t.Verified, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
	if pg.IsNotFound(err) {
		return auth.VerificationToken{}, auth.ErrInvalidCode
	}
	if err != nil {
		return auth.VerificationToken{}, fmt.Errorf("postgres: failed to find token: %w", err)
	}
	return t, nil
}

func (s *Storage) FindTokenByCode(ctx context.Context, code string, typ auth.TokenType) (auth.VerificationToken, error) {
	var t auth.VerificationToken
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, type, secret, code, verified, expires_at, created_at, updated_at
		 FROM verification_tokens WHERE code = $1 AND type = $2`, code, typ).
		Scan(&t.ID, &t.UserID, &t.Type, &t.Secret, &t.Code, &t.Verified, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
	if pg.IsNotFound(err) {
		return auth.VerificationToken{}, auth.ErrInvalidCode
	}
	if err != nil {
		return auth.VerificationToken{}, fmt.Errorf("postgres: failed to find token by code: %w", err)
	}
	return t, nil
}

func (s *Storage) MarkTokenVerified(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE verification_tokens SET verified = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to mark token verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrInvalidCode
	}
	return nil
}

func (s *Storage) DeleteToken(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM verification_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete token: %w", err)
	}
	return nil
}
