package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/launchkit/pkg/pg"
	"github.com/dmitrymomot/launchkit/svc/rbac"
)

// FindDefaultOrgRole resolves the user's role through their default
// organization membership in one query.
func (s *Storage) FindDefaultOrgRole(ctx context.Context, userID uuid.UUID) (rbac.Role, error) {
	var r rbac.Role
	err := s.pool.QueryRow(ctx,
		`SELECT r.id, r.name, r.display_name
		 FROM users u
		 JOIN members m ON m.user_id = u.id AND m.org_id = u.default_org_id
		 JOIN roles r ON r.id = m.role_id
		 WHERE u.id = $1`, userID).
		Scan(&r.ID, &r.Name, &r.DisplayName)
	if pg.IsNotFound(err) {
		return rbac.Role{}, rbac.ErrRoleNotFound
	}
	if err != nil {
		return rbac.Role{}, fmt.Errorf("postgres: failed to resolve default-org role: %w", err)
	}
	return r, nil
}

// FindMemberRole resolves the user's role inside a specific organization.
func (s *Storage) FindMemberRole(ctx context.Context, orgID, userID uuid.UUID) (rbac.Role, error) {
	var r rbac.Role
	err := s.pool.QueryRow(ctx,
		`SELECT r.id, r.name, r.display_name
		 FROM members m
		 JOIN roles r ON r.id = m.role_id
		 WHERE m.org_id = $1 AND m.user_id = $2`, orgID, userID).
		Scan(&r.ID, &r.Name, &r.DisplayName)
	if pg.IsNotFound(err) {
		return rbac.Role{}, rbac.ErrRoleNotFound
	}
	if err != nil {
		return rbac.Role{}, fmt.Errorf("postgres: failed to resolve member role: %w", err)
	}
	return r, nil
}

func (s *Storage) FindPermissionsForRole(ctx context.Context, roleID uuid.UUID) ([]rbac.Permission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT p.action, p.entity, p.access
		 FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = $1`, roleID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list role permissions: %w", err)
	}
	defer rows.Close()

	var out []rbac.Permission
	for rows.Next() {
		var p rbac.Permission
		if err := rows.Scan(&p.Action, &p.Entity, &p.Access); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan permission: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Storage) FindRoleByName(ctx context.Context, name string) (rbac.Role, error) {
	var r rbac.Role
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, display_name FROM roles WHERE name = $1`, name).
		Scan(&r.ID, &r.Name, &r.DisplayName)
	if pg.IsNotFound(err) {
		return rbac.Role{}, rbac.ErrRoleNotFound
	}
	if err != nil {
		return rbac.Role{}, fmt.Errorf("postgres: failed to find role: %w", err)
	}
	return r, nil
}

// ApplyRoleSeed makes the database match the declared roles and grants.
// Roles and permissions are upserted by their natural keys; each role's
// grant set is replaced wholesale so removals in the seed take effect.
func (s *Storage) ApplyRoleSeed(ctx context.Context, seeds []rbac.RoleSeed) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		for _, seed := range seeds {
			var roleID uuid.UUID
			err := tx.QueryRow(ctx,
				`INSERT INTO roles (id, name, display_name)
				 VALUES ($1, $2, $3)
				 ON CONFLICT (name) DO UPDATE SET display_name = EXCLUDED.display_name
				 RETURNING id`,
				uuid.New(), seed.Name, seed.DisplayName).Scan(&roleID)
			if err != nil {
				return fmt.Errorf("postgres: failed to upsert role %q: %w", seed.Name, err)
			}

			if _, err := tx.Exec(ctx,
				`DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
				return fmt.Errorf("postgres: failed to clear grants for %q: %w", seed.Name, err)
			}

			for _, perm := range seed.Permissions {
				var permID uuid.UUID
				err := tx.QueryRow(ctx,
					`INSERT INTO permissions (id, action, entity, access)
					 VALUES ($1, $2, $3, $4)
					 ON CONFLICT (action, entity, access) DO UPDATE SET action = EXCLUDED.action
					 RETURNING id`,
					uuid.New(), perm.Action, perm.Entity, perm.Access).Scan(&permID)
				if err != nil {
					return fmt.Errorf("postgres: failed to upsert permission: %w", err)
				}
				if _, err := tx.Exec(ctx,
					`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)
					 ON CONFLICT DO NOTHING`, roleID, permID); err != nil {
					return fmt.Errorf("postgres: failed to grant permission: %w", err)
				}
			}
		}
		return nil
	})
}
