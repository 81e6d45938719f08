// Package settings is the signed-in account and workspace surface:
// password changes, organization management, member roles, API keys and
// avatars. Every route sits behind the session and verification gates;
// member-affecting mutations additionally consult the permission service.
package settings
