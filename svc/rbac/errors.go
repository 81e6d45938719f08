package rbac

import "errors"

var (
	// ErrInvalidPermission marks an unknown action, entity, or access value
	// observed at a boundary (request body, seed file, storage row).
	ErrInvalidPermission = errors.New("rbac: invalid permission component")

	// ErrRoleNotFound indicates the user has no role in their default
	// organization. This is a data-integrity fault, not a user error.
	ErrRoleNotFound = errors.New("rbac: role not found for user's default organization")
)
