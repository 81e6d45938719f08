package issue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/launchkit/pkg/sanitizer"
	"github.com/dmitrymomot/launchkit/pkg/validator"
)

var (
	ErrIssueNotFound = errors.New("issue: not found")
	ErrInvalidStatus = errors.New("issue: invalid status")
)

// Status is the issue workflow state.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusClosed     Status = "closed"
)

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

// Issue belongs to exactly one organization.
type Issue struct {
	ID          uuid.UUID
	OrgID       uuid.UUID
	CreatedBy   uuid.UUID
	Title       string
	Description string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Storage persists issues. Lookups are always organization-scoped so one
// tenant can never address another tenant's rows.
type Storage interface {
	CreateIssue(ctx context.Context, i Issue) error
	FindIssue(ctx context.Context, orgID, id uuid.UUID) (Issue, error)
	ListIssues(ctx context.Context, orgID uuid.UUID) ([]Issue, error)
	UpdateIssue(ctx context.Context, i Issue) error
	DeleteIssue(ctx context.Context, orgID, id uuid.UUID) error
}

// Service is plain CRUD; authorization happens in the callers (rbac for
// session users, key scoping for the public API).
type Service struct {
	storage Storage
	log     *slog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the issue service.
func NewService(storage Storage, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a new issue.
func (s *Service) Create(ctx context.Context, orgID, createdBy uuid.UUID, title, description string) (Issue, error) {
	title = sanitizer.TrimName(title)
	if err := validator.Apply(
		validator.Required("title", title),
	); err != nil {
		return Issue{}, err
	}

	now := s.now()
	i := Issue{
		ID:          uuid.New(),
		OrgID:       orgID,
		CreatedBy:   createdBy,
		Title:       title,
		Description: description,
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.storage.CreateIssue(ctx, i); err != nil {
		return Issue{}, fmt.Errorf("issue: failed to create: %w", err)
	}
	return i, nil
}

// Get fetches one issue within the organization.
func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (Issue, error) {
	return s.storage.FindIssue(ctx, orgID, id)
}

// List returns the organization's issues.
func (s *Service) List(ctx context.Context, orgID uuid.UUID) ([]Issue, error) {
	return s.storage.ListIssues(ctx, orgID)
}

// UpdateParams carries the mutable fields; nil means leave unchanged.
type UpdateParams struct {
	Title       *string
	Description *string
	Status      *Status
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, orgID, id uuid.UUID, params UpdateParams) (Issue, error) {
	i, err := s.storage.FindIssue(ctx, orgID, id)
	if err != nil {
		return Issue{}, err
	}

	if params.Title != nil {
		title := sanitizer.TrimName(*params.Title)
		if err := validator.Apply(validator.Required("title", title)); err != nil {
			return Issue{}, err
		}
		i.Title = title
	}
	if params.Description != nil {
		i.Description = *params.Description
	}
	if params.Status != nil {
		if !params.Status.Valid() {
			return Issue{}, ErrInvalidStatus
		}
		i.Status = *params.Status
	}
	i.UpdatedAt = s.now()

	if err := s.storage.UpdateIssue(ctx, i); err != nil {
		return Issue{}, fmt.Errorf("issue: failed to update: %w", err)
	}
	return i, nil
}

// Delete removes an issue within the organization.
func (s *Service) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return s.storage.DeleteIssue(ctx, orgID, id)
}
