package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/launchkit/pkg/pg"
	"github.com/dmitrymomot/launchkit/svc/auth"
)

func (s *Storage) FindCredential(ctx context.Context, userID uuid.UUID) (auth.Credential, error) {
	var c auth.Credential
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, password_hash, verified_at, created_at, updated_at
		 FROM credentials WHERE user_id = $1`, userID).
		Scan(&c.UserID, &c.PasswordHash, &c.VerifiedAt, &c.CreatedAt, &c.UpdatedAt)
	if pg.IsNotFound(err) {
		return auth.Credential{}, auth.ErrNoPasswordLogin
	}
	if err != nil {
		return auth.Credential{}, fmt.Errorf("postgres: failed to find credential: %w", err)
	}
	return c, nil
}

func (s *Storage) CreateCredential(ctx context.Context, c auth.Credential) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO credentials (user_id, password_hash, verified_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.UserID, c.PasswordHash, c.VerifiedAt, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to create credential: %w", err)
	}
	return nil
}

func (s *Storage) UpdateCredentialPassword(ctx context.Context, userID uuid.UUID, hash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE credentials SET password_hash = $2, updated_at = now() WHERE user_id = $1`,
		userID, hash)
	if err != nil {
		return fmt.Errorf("postgres: failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrNoPasswordLogin
	}
	return nil
}

func (s *Storage) MarkCredentialVerified(ctx context.Context, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE credentials SET verified_at = now(), updated_at = now()
		 WHERE user_id = $1 AND verified_at IS NULL`, userID)
	if err != nil {
		return fmt.Errorf("postgres: failed to mark credential verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either no credential exists or it was already verified; check which.
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM credentials WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
			return fmt.Errorf("postgres: failed to check credential: %w", err)
		}
		if !exists {
			return auth.ErrNoPasswordLogin
		}
	}
	return nil
}
