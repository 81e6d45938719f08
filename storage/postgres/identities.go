package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/launchkit/pkg/pg"
	"github.com/dmitrymomot/launchkit/svc/auth"
)

func (s *Storage) FindIdentity(ctx context.Context, provider, providerUserID string) (auth.Identity, error) {
	var i auth.Identity
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, provider, provider_user_id, email, created_at
		 FROM identities WHERE provider = $1 AND provider_user_id = $2`,
		provider, providerUserID).
		Scan(&i.ID, &i.UserID, &i.Provider, &i.ProviderUserID, &i.Email, &i.CreatedAt)
	if pg.IsNotFound(err) {
		return auth.Identity{}, auth.ErrNotLinked
	}
	if err != nil {
		return auth.Identity{}, fmt.Errorf("postgres: failed to find identity: %w", err)
	}
	return i, nil
}

func (s *Storage) FindUserIdentities(ctx context.Context, userID uuid.UUID) ([]auth.Identity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, provider, provider_user_id, email, created_at
		 FROM identities WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list identities: %w", err)
	}
	defer rows.Close()

	var out []auth.Identity
	for rows.Next() {
		var i auth.Identity
		if err := rows.Scan(&i.ID, &i.UserID, &i.Provider, &i.ProviderUserID, &i.Email, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan identity: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *Storage) CreateIdentity(ctx context.Context, i auth.Identity) error {
	return createIdentity(ctx, s.pool, i)
}

func createIdentity(ctx context.Context, q querier, i auth.Identity) error {
	_, err := q.Exec(ctx,
		`INSERT INTO identities (id, user_id, provider, provider_user_id, email, created_at)
		 VALUES ($1, $2, $3, $4, lower($5), $6)`,
		i.ID, i.UserID, i.Provider, i.ProviderUserID, i.Email, i.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to create identity: %w", err)
	}
	return nil
}

func (s *Storage) DeleteIdentity(ctx context.Context, userID uuid.UUID, provider string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM identities WHERE user_id = $1 AND provider = $2`, userID, provider)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrNotLinked
	}
	return nil
}

// CreateUserWithIdentity inserts the user and its first OAuth identity
// atomically so a crash between the two cannot orphan either row.
func (s *Storage) CreateUserWithIdentity(ctx context.Context, u auth.User, i auth.Identity) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if err := createUser(ctx, tx, u); err != nil {
			return err
		}
		return createIdentity(ctx, tx, i)
	})
}
