package auth

import (
	"context"

	"github.com/google/uuid"
)

// UserStore persists accounts.
type UserStore interface {
	// FindUserByEmail matches case-insensitively; emails are stored lowercased.
	FindUserByEmail(ctx context.Context, email string) (User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (User, error)
	CreateUser(ctx context.Context, u User) error
	UpdateUserAvatar(ctx context.Context, userID uuid.UUID, path string) error
}

// CredentialStore persists password logins.
type CredentialStore interface {
	FindCredential(ctx context.Context, userID uuid.UUID) (Credential, error)
	CreateCredential(ctx context.Context, c Credential) error
	UpdateCredentialPassword(ctx context.Context, userID uuid.UUID, hash string) error
	MarkCredentialVerified(ctx context.Context, userID uuid.UUID) error
}

// IdentityStore persists OAuth identities. CreateUserWithIdentity runs in
// one transaction so a half-created OAuth account can never exist.
type IdentityStore interface {
	FindIdentity(ctx context.Context, provider, providerUserID string) (Identity, error)
	FindUserIdentities(ctx context.Context, userID uuid.UUID) ([]Identity, error)
	CreateIdentity(ctx context.Context, i Identity) error
	DeleteIdentity(ctx context.Context, userID uuid.UUID, provider string) error
	CreateUserWithIdentity(ctx context.Context, u User, i Identity) error
}

// TokenStore persists verification tokens. UpsertToken must be atomic
// (insert-or-update on the (user_id, type) unique constraint) so concurrent
// resends cannot create duplicate live tokens.
type TokenStore interface {
	UpsertToken(ctx context.Context, t VerificationToken) error
	FindToken(ctx context.Context, userID uuid.UUID, typ TokenType) (VerificationToken, error)
	FindTokenByCode(ctx context.Context, code string, typ TokenType) (VerificationToken, error)
	MarkTokenVerified(ctx context.Context, id uuid.UUID) error
	DeleteToken(ctx context.Context, id uuid.UUID) error
}

// Storage is everything the orchestrator needs from persistence.
// ErrUserNotFound (and friends) are the not-found sentinels implementations
// must return; driver errors stay below this line.
type Storage interface {
	UserStore
	CredentialStore
	IdentityStore
	TokenStore
}
