package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/launchkit/pkg/pg"
	"github.com/dmitrymomot/launchkit/svc/auth"
)

const userColumns = `id, email, first_name, last_name, onboarding, default_org_id, avatar_path, created_at, updated_at`

func scanUser(row pgx.Row) (auth.User, error) {
	var (
		u     auth.User
		orgID *uuid.UUID
	)
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Onboarding, &orgID, &u.AvatarPath, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return auth.User{}, err
	}
	if orgID != nil {
		u.DefaultOrgID = *orgID
	}
	return u, nil
}

func (s *Storage) FindUserByEmail(ctx context.Context, email string) (auth.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email)
	u, err := scanUser(row)
	if pg.IsNotFound(err) {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("postgres: failed to find user by email: %w", err)
	}
	return u, nil
}

func (s *Storage) FindUserByID(ctx context.Context, id uuid.UUID) (auth.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if pg.IsNotFound(err) {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("postgres: failed to find user: %w", err)
	}
	return u, nil
}

func (s *Storage) CreateUser(ctx context.Context, u auth.User) error {
	return createUser(ctx, s.pool, u)
}

// createUser is shared with the CreateUserWithIdentity transaction.
func createUser(ctx context.Context, q querier, u auth.User) error {
	_, err := q.Exec(ctx,
		`INSERT INTO users (id, email, first_name, last_name, onboarding, avatar_path, created_at, updated_at)
		 VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.FirstName, u.LastName, u.Onboarding, u.AvatarPath, u.CreatedAt, u.UpdatedAt)
	if pg.IsUniqueViolation(err) {
		return auth.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("postgres: failed to create user: %w", err)
	}
	return nil
}

func (s *Storage) UpdateUserAvatar(ctx context.Context, userID uuid.UUID, path string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET avatar_path = $2, updated_at = now() WHERE id = $1`, userID, path)
	if err != nil {
		return fmt.Errorf("postgres: failed to update avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// querier is the subset of pgx shared by pools and transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
