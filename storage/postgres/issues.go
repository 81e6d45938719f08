package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/launchkit/pkg/pg"
	"github.com/dmitrymomot/launchkit/svc/issue"
)

func (s *Storage) CreateIssue(ctx context.Context, i issue.Issue) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO issues (id, org_id, created_by, title, description, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		i.ID, i.OrgID, i.CreatedBy, i.Title, i.Description, i.Status, i.CreatedAt, i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to create issue: %w", err)
	}
	return nil
}

func (s *Storage) FindIssue(ctx context.Context, orgID, id uuid.UUID) (issue.Issue, error) {
	var i issue.Issue
	err := s.pool.QueryRow(ctx,
		`SELECT id, org_id, created_by, title, description, status, created_at, updated_at
		 FROM issues WHERE org_id = $1 AND id = $2`, orgID, id).
		Scan(&i.ID, &i.OrgID, &i.CreatedBy, &i.Title, &i.Description, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	if pg.IsNotFound(err) {
		return issue.Issue{}, issue.ErrIssueNotFound
	}
	if err != nil {
		return issue.Issue{}, fmt.Errorf("postgres: failed to find issue: %w", err)
	}
	return i, nil
}

func (s *Storage) ListIssues(ctx context.Context, orgID uuid.UUID) ([]issue.Issue, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, org_id, created_by, title, description, status, created_at, updated_at
		 FROM issues WHERE org_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list issues: %w", err)
	}
	defer rows.Close()

	var out []issue.Issue
	for rows.Next() {
		var i issue.Issue
		if err := rows.Scan(&i.ID, &i.OrgID, &i.CreatedBy, &i.Title, &i.Description, &i.Status, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan issue: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *Storage) UpdateIssue(ctx context.Context, i issue.Issue) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE issues SET title = $3, description = $4, status = $5, updated_at = $6
		 WHERE org_id = $1 AND id = $2`,
		i.OrgID, i.ID, i.Title, i.Description, i.Status, i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to update issue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return issue.ErrIssueNotFound
	}
	return nil
}

func (s *Storage) DeleteIssue(ctx context.Context, orgID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM issues WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete issue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return issue.ErrIssueNotFound
	}
	return nil
}
