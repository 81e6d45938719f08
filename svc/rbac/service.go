package rbac

import (
	"context"
	"io"
	"log/slog"
	"slices"

	"github.com/google/uuid"
)

// Storage is the read surface the permission check needs. Implementations
// resolve the default organization internally; callers only hand over the
// user id.
type Storage interface {
	// FindDefaultOrgRole returns the user's role in their default
	// organization, or ErrRoleNotFound.
	FindDefaultOrgRole(ctx context.Context, userID uuid.UUID) (Role, error)

	// FindMemberRole returns the user's role in the given organization,
	// or ErrRoleNotFound when they are not a member.
	FindMemberRole(ctx context.Context, orgID, userID uuid.UUID) (Role, error)

	// FindPermissionsForRole returns every permission granted to the role.
	FindPermissionsForRole(ctx context.Context, roleID uuid.UUID) ([]Permission, error)
}

// Service answers permission questions. It is a pure read path with no
// side effects; callers decide how to react to a false answer.
type Service struct {
	storage Storage
	log     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for integrity faults.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService creates a permission-check service.
func NewService(storage Storage, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasPermission reports whether the user's default-organization role grants
// any of the requested actions on entity with the given access scope.
//
// A missing permission row returns (false, nil). A missing role bubbles up
// as ErrRoleNotFound so the caller can treat it as a 500-class fault.
func (s *Service) HasPermission(ctx context.Context, userID uuid.UUID, actions []Action, entity Entity, access Access) (bool, error) {
	if err := validateRequest(actions, entity, access); err != nil {
		return false, err
	}

	role, err := s.storage.FindDefaultOrgRole(ctx, userID)
	if err != nil {
		return false, err
	}
	return s.roleGrants(ctx, role, actions, entity, access)
}

// HasOrgPermission answers the same question for an explicit organization
// instead of the user's default one. API keys carry their own org scope, so
// checks on their behalf must not follow the creator's current default.
func (s *Service) HasOrgPermission(ctx context.Context, orgID, userID uuid.UUID, actions []Action, entity Entity, access Access) (bool, error) {
	if err := validateRequest(actions, entity, access); err != nil {
		return false, err
	}

	role, err := s.storage.FindMemberRole(ctx, orgID, userID)
	if err != nil {
		return false, err
	}
	return s.roleGrants(ctx, role, actions, entity, access)
}

// CanWrite is shorthand for the most common guard before mutations.
func (s *Service) CanWrite(ctx context.Context, userID uuid.UUID, entity Entity) (bool, error) {
	return s.HasPermission(ctx, userID, []Action{ActionWrite}, entity, AccessAny)
}

// CanWriteIn is CanWrite scoped to a specific organization.
func (s *Service) CanWriteIn(ctx context.Context, orgID, userID uuid.UUID, entity Entity) (bool, error) {
	return s.HasOrgPermission(ctx, orgID, userID, []Action{ActionWrite}, entity, AccessAny)
}

func validateRequest(actions []Action, entity Entity, access Access) error {
	for _, a := range actions {
		if !a.Valid() {
			return ErrInvalidPermission
		}
	}
	if !entity.Valid() || !access.Valid() {
		return ErrInvalidPermission
	}
	return nil
}

func (s *Service) roleGrants(ctx context.Context, role Role, actions []Action, entity Entity, access Access) (bool, error) {
	perms, err := s.storage.FindPermissionsForRole(ctx, role.ID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p.Entity == entity && p.Access == access && slices.Contains(actions, p.Action) {
			return true, nil
		}
	}
	return false, nil
}
