package tenant

import "errors"

var (
	ErrOrgNotFound = errors.New("tenant: organization not found")
	ErrNotAMember  = errors.New("tenant: user is not a member of the organization")
	ErrUnknownRole = errors.New("tenant: unknown role")

	// ErrLastAdmin aborts a role change that would leave the organization
	// with zero admins. Storage implementations return it after rolling
	// back the transaction.
	ErrLastAdmin = errors.New("tenant: organization must retain at least one admin")
)
