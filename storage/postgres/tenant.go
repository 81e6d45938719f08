package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/launchkit/pkg/pg"
	"github.com/dmitrymomot/launchkit/svc/auth"
	"github.com/dmitrymomot/launchkit/svc/rbac"
	"github.com/dmitrymomot/launchkit/svc/tenant"
)

func (s *Storage) CreateOrganizationWithAdmin(ctx context.Context, org tenant.Organization, admin tenant.Member) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO organizations (id, name, created_at, updated_at)
			 VALUES ($1, $2, $3, $4)`,
			org.ID, org.Name, org.CreatedAt, org.UpdatedAt); err != nil {
			return fmt.Errorf("postgres: failed to create organization: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO members (id, org_id, user_id, role_id, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			admin.ID, admin.OrgID, admin.UserID, admin.RoleID, admin.CreatedAt); err != nil {
			return fmt.Errorf("postgres: failed to create founding member: %w", err)
		}
		return nil
	})
}

func (s *Storage) FindOrganization(ctx context.Context, id uuid.UUID) (tenant.Organization, error) {
	var org tenant.Organization
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM organizations WHERE id = $1`, id).
		Scan(&org.ID, &org.Name, &org.CreatedAt, &org.UpdatedAt)
	if pg.IsNotFound(err) {
		return tenant.Organization{}, tenant.ErrOrgNotFound
	}
	if err != nil {
		return tenant.Organization{}, fmt.Errorf("postgres: failed to find organization: %w", err)
	}
	return org, nil
}

func (s *Storage) FindUserOrganizations(ctx context.Context, userID uuid.UUID) ([]tenant.Organization, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT o.id, o.name, o.created_at, o.updated_at
		 FROM organizations o
		 JOIN members m ON m.org_id = o.id
		 WHERE m.user_id = $1
		 ORDER BY o.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list organizations: %w", err)
	}
	defer rows.Close()

	var out []tenant.Organization
	for rows.Next() {
		var org tenant.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan organization: %w", err)
		}
		out = append(out, org)
	}
	return out, rows.Err()
}

func (s *Storage) FindMembership(ctx context.Context, orgID, userID uuid.UUID) (tenant.Member, error) {
	var m tenant.Member
	err := s.pool.QueryRow(ctx,
		`SELECT id, org_id, user_id, role_id, created_at
		 FROM members WHERE org_id = $1 AND user_id = $2`, orgID, userID).
		Scan(&m.ID, &m.OrgID, &m.UserID, &m.RoleID, &m.CreatedAt)
	if pg.IsNotFound(err) {
		return tenant.Member{}, tenant.ErrNotAMember
	}
	if err != nil {
		return tenant.Member{}, fmt.Errorf("postgres: failed to find membership: %w", err)
	}
	return m, nil
}

func (s *Storage) ListMembers(ctx context.Context, orgID uuid.UUID) ([]tenant.Member, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, org_id, user_id, role_id, created_at
		 FROM members WHERE org_id = $1 ORDER BY created_at`, orgID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list members: %w", err)
	}
	defer rows.Close()

	var out []tenant.Member
	for rows.Next() {
		var m tenant.Member
		if err := rows.Scan(&m.ID, &m.OrgID, &m.UserID, &m.RoleID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ChangeMemberRole updates the membership and recounts admins in the same
// transaction. Zero remaining admins aborts the whole thing with
// tenant.ErrLastAdmin, so the demotion is never observable.
func (s *Storage) ChangeMemberRole(ctx context.Context, orgID, memberID, roleID uuid.UUID) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE members SET role_id = $3 WHERE org_id = $1 AND id = $2`,
			orgID, memberID, roleID)
		if err != nil {
			return fmt.Errorf("postgres: failed to change member role: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return tenant.ErrNotAMember
		}

		var admins int
		err = tx.QueryRow(ctx,
			`SELECT count(*) FROM members m
			 JOIN roles r ON r.id = m.role_id
			 WHERE m.org_id = $1 AND r.name = $2`, orgID, rbac.RoleAdmin).
			Scan(&admins)
		if err != nil {
			return fmt.Errorf("postgres: failed to count admins: %w", err)
		}
		if admins == 0 {
			return tenant.ErrLastAdmin
		}
		return nil
	})
}

func (s *Storage) SetDefaultOrganization(ctx context.Context, userID, orgID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET default_org_id = $2, updated_at = now() WHERE id = $1`, userID, orgID)
	if err != nil {
		return fmt.Errorf("postgres: failed to set default organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (s *Storage) UpdateUserOnboarding(ctx context.Context, userID uuid.UUID, status auth.OnboardingStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET onboarding = $2, updated_at = now() WHERE id = $1`, userID, status)
	if err != nil {
		return fmt.Errorf("postgres: failed to update onboarding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}
