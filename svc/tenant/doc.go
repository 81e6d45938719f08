// Package tenant manages organizations and their members: creation with the
// founding admin, default-organization switching, onboarding progression,
// and member role changes guarded by the last-admin invariant.
//
// The role-change path is the one place with a cross-row invariant: the
// storage implementation must recount admins inside the same transaction as
// the update and roll back when none would remain.
package tenant
