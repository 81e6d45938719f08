package rbac

import (
	"fmt"

	"github.com/google/uuid"
)

// Action is what a member wants to do with an entity.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

// ParseAction validates a raw string coming from storage or a request body.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", fmt.Errorf("%w: action %q", ErrInvalidPermission, s)
	}
	return a, nil
}

func (a Action) Valid() bool {
	switch a {
	case ActionRead, ActionWrite:
		return true
	}
	return false
}

// Entity is the resource class a permission applies to.
type Entity string

const (
	EntityIssues   Entity = "issues"
	EntityMembers  Entity = "members"
	EntitySettings Entity = "settings"
)

func ParseEntity(s string) (Entity, error) {
	e := Entity(s)
	if !e.Valid() {
		return "", fmt.Errorf("%w: entity %q", ErrInvalidPermission, s)
	}
	return e, nil
}

func (e Entity) Valid() bool {
	switch e {
	case EntityIssues, EntityMembers, EntitySettings:
		return true
	}
	return false
}

// Access scopes a permission to any record or only the member's own.
type Access string

const (
	AccessAny Access = "any"
	AccessOwn Access = "own"
)

func ParseAccess(s string) (Access, error) {
	a := Access(s)
	if !a.Valid() {
		return "", fmt.Errorf("%w: access %q", ErrInvalidPermission, s)
	}
	return a, nil
}

func (a Access) Valid() bool {
	switch a {
	case AccessAny, AccessOwn:
		return true
	}
	return false
}

// Well-known role names. RoleAdmin participates in the last-admin invariant
// enforced by the tenant service.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// Role is a named bundle of permissions.
type Role struct {
	ID          uuid.UUID
	Name        string
	DisplayName string
}

// Permission is a single (action, entity, access) grant.
type Permission struct {
	Action Action
	Entity Entity
	Access Access
}

// Valid reports whether every component of the permission is a known value.
func (p Permission) Valid() bool {
	return p.Action.Valid() && p.Entity.Valid() && p.Access.Valid()
}
