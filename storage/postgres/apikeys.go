package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/launchkit/pkg/pg"
	"github.com/dmitrymomot/launchkit/svc/apikey"
)

func (s *Storage) CreateAPIKey(ctx context.Context, k apikey.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, org_id, created_by, name, hash, last_four, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		k.ID, k.OrgID, k.CreatedBy, k.Name, k.Hash, k.LastFour, k.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to create api key: %w", err)
	}
	return nil
}

func (s *Storage) FindAPIKeyByHash(ctx context.Context, hash string) (apikey.APIKey, error) {
	var k apikey.APIKey
	err := s.pool.QueryRow(ctx,
		`SELECT id, org_id, created_by, name, hash, last_four, created_at
		 FROM api_keys WHERE hash = $1`, hash).
		Scan(&k.ID, &k.OrgID, &k.CreatedBy, &k.Name, &k.Hash, &k.LastFour, &k.CreatedAt)
	if pg.IsNotFound(err) {
		return apikey.APIKey{}, apikey.ErrKeyNotFound
	}
	if err != nil {
		return apikey.APIKey{}, fmt.Errorf("postgres: failed to find api key: %w", err)
	}
	return k, nil
}

func (s *Storage) ListAPIKeys(ctx context.Context, orgID uuid.UUID) ([]apikey.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, org_id, created_by, name, hash, last_four, created_at
		 FROM api_keys WHERE org_id = $1 ORDER BY created_at`, orgID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list api keys: %w", err)
	}
	defer rows.Close()

	var out []apikey.APIKey
	for rows.Next() {
		var k apikey.APIKey
		if err := rows.Scan(&k.ID, &k.OrgID, &k.CreatedBy, &k.Name, &k.Hash, &k.LastFour, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan api key: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (s *Storage) DeleteAPIKey(ctx context.Context, orgID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM api_keys WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apikey.ErrKeyNotFound
	}
	return nil
}
