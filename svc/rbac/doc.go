// Package rbac implements role-based authorization. Actions, entities, and
// access scopes are closed string types validated at the boundary, so the
// permission check can switch over them exhaustively.
//
// The check always runs against the user's default organization: resolve the
// member's role there, then look for a permission row matching the requested
// (action, entity, access) triple. A missing permission is a normal false;
// a missing role or organization is a data-integrity fault.
package rbac
