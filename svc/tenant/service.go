package tenant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/launchkit/pkg/logger"
	"github.com/dmitrymomot/launchkit/pkg/sanitizer"
	"github.com/dmitrymomot/launchkit/pkg/validator"
	"github.com/dmitrymomot/launchkit/svc/auth"
	"github.com/dmitrymomot/launchkit/svc/rbac"
)

// Storage is the persistence surface for organizations and memberships.
type Storage interface {
	// CreateOrganizationWithAdmin inserts the organization and its founding
	// admin member in one transaction.
	CreateOrganizationWithAdmin(ctx context.Context, org Organization, admin Member) error
	FindOrganization(ctx context.Context, id uuid.UUID) (Organization, error)
	FindUserOrganizations(ctx context.Context, userID uuid.UUID) ([]Organization, error)
	FindMembership(ctx context.Context, orgID, userID uuid.UUID) (Member, error)
	ListMembers(ctx context.Context, orgID uuid.UUID) ([]Member, error)

	// ChangeMemberRole updates the member's role and, in the same
	// transaction, recounts admins for the organization. When zero admins
	// would remain it rolls everything back and returns ErrLastAdmin.
	ChangeMemberRole(ctx context.Context, orgID, memberID, roleID uuid.UUID) error

	FindRoleByName(ctx context.Context, name string) (rbac.Role, error)

	SetDefaultOrganization(ctx context.Context, userID, orgID uuid.UUID) error
	UpdateUserOnboarding(ctx context.Context, userID uuid.UUID, status auth.OnboardingStatus) error
}

// Service coordinates organization lifecycle and membership changes.
type Service struct {
	storage Storage
	users   auth.UserStore
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

// NewService creates the tenant service.
func NewService(storage Storage, users auth.UserStore, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		users:   users,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrganization creates an organization with the creator as its admin.
// The new organization becomes the user's default, and a user still in
// onboarding is marked complete: having an organization is the end state of
// setup.
func (s *Service) CreateOrganization(ctx context.Context, userID uuid.UUID, name string) (Organization, error) {
	name = sanitizer.TrimName(name)
	if err := validator.Apply(
		validator.Required("name", name),
	); err != nil {
		return Organization{}, err
	}

	adminRole, err := s.storage.FindRoleByName(ctx, rbac.RoleAdmin)
	if err != nil {
		// Roles are seeded at startup; missing admin means broken data.
		return Organization{}, fmt.Errorf("tenant: admin role missing: %w", err)
	}

	now := s.now()
	org := Organization{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	admin := Member{
		ID:        uuid.New(),
		OrgID:     org.ID,
		UserID:    userID,
		RoleID:    adminRole.ID,
		CreatedAt: now,
	}
	if err := s.storage.CreateOrganizationWithAdmin(ctx, org, admin); err != nil {
		return Organization{}, fmt.Errorf("tenant: failed to create organization: %w", err)
	}

	if err := s.storage.SetDefaultOrganization(ctx, userID, org.ID); err != nil {
		return Organization{}, fmt.Errorf("tenant: failed to set default organization: %w", err)
	}

	user, err := s.users.FindUserByID(ctx, userID)
	if err == nil && user.Onboarding != auth.OnboardingComplete {
		if err := s.storage.UpdateUserOnboarding(ctx, userID, auth.OnboardingComplete); err != nil {
			return Organization{}, fmt.Errorf("tenant: failed to update onboarding: %w", err)
		}
	}

	s.log.InfoContext(ctx, "organization created",
		logger.OrganizationID(org.ID.String()),
		logger.UserID(userID.String()),
	)
	return org, nil
}

// StartOnboarding moves a fresh account into the in-progress state. Calling
// it again, or after completion, is a no-op.
func (s *Service) StartOnboarding(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("tenant: user lookup failed: %w", err)
	}
	if user.Onboarding != auth.OnboardingNotStarted {
		return nil
	}
	return s.storage.UpdateUserOnboarding(ctx, userID, auth.OnboardingInProgress)
}

// SwitchDefaultOrganization changes which organization's role applies to
// the user's permission checks. Membership is validated first.
func (s *Service) SwitchDefaultOrganization(ctx context.Context, userID, orgID uuid.UUID) error {
	if _, err := s.storage.FindMembership(ctx, orgID, userID); err != nil {
		if errors.Is(err, ErrNotAMember) {
			return ErrNotAMember
		}
		return fmt.Errorf("tenant: membership lookup failed: %w", err)
	}
	if err := s.storage.SetDefaultOrganization(ctx, userID, orgID); err != nil {
		return fmt.Errorf("tenant: failed to switch default organization: %w", err)
	}
	return nil
}

// Organizations lists every organization the user belongs to.
func (s *Service) Organizations(ctx context.Context, userID uuid.UUID) ([]Organization, error) {
	return s.storage.FindUserOrganizations(ctx, userID)
}

// Members lists an organization's memberships.
func (s *Service) Members(ctx context.Context, orgID uuid.UUID) ([]Member, error) {
	return s.storage.ListMembers(ctx, orgID)
}

// ChangeMemberRole assigns roleName to the target user's membership in the
// organization. The storage transaction enforces the last-admin invariant;
// ErrLastAdmin means nothing was changed.
func (s *Service) ChangeMemberRole(ctx context.Context, orgID, targetUserID uuid.UUID, roleName string) error {
	role, err := s.storage.FindRoleByName(ctx, roleName)
	if err != nil {
		return ErrUnknownRole
	}

	member, err := s.storage.FindMembership(ctx, orgID, targetUserID)
	if err != nil {
		return ErrNotAMember
	}

	if err := s.storage.ChangeMemberRole(ctx, orgID, member.ID, role.ID); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "member role changed",
		logger.OrganizationID(orgID.String()),
		logger.UserID(targetUserID.String()),
		slog.String("role", roleName),
	)
	return nil
}
