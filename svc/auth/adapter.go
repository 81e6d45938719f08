package auth

import "context"

// OAuth provider identifiers used across the auth system.
const (
	ProviderGoogle = "google"
	ProviderGithub = "github"
)

// ProviderAdapter abstracts provider-specific OAuth behavior behind a
// minimal interface. Implementations encapsulate all protocol details
// (oauth2.Config, token exchange, profile API calls) and are selected from
// a registry map by provider id.
type ProviderAdapter interface {
	// ProviderID returns the stable identifier used for storage and
	// logging, e.g. "google".
	ProviderID() string

	// AuthURL builds the provider authorization URL for the given state.
	AuthURL(state string) string

	// ResolveProfile exchanges the authorization code and fetches the
	// user's profile. Invalid or expired codes come back as ErrInvalidOAuth;
	// a profile without an email as ErrNoPrimaryEmail. Email normalization
	// happens in the core service, not here.
	ResolveProfile(ctx context.Context, code string) (ProviderProfile, error)
}

// ProviderProfile is the normalized profile a provider returns. The core
// service uses it to create or link local users.
type ProviderProfile struct {
	// ProviderUserID is the provider's stable user id, stringified.
	ProviderUserID string
	Email          string
	EmailVerified  bool
	Name           string
	AvatarURL      string
}
