package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/launchkit/pkg/logger"
	"github.com/dmitrymomot/launchkit/pkg/sanitizer"
)

// AuthURL returns the provider's authorization URL for the handshake state.
func (s *Service) AuthURL(provider, state string) (string, error) {
	adapter, ok := s.adapters[provider]
	if !ok {
		return "", ErrUnknownProvider
	}
	return adapter.AuthURL(state), nil
}

// HandleCallback completes an OAuth login. Linking rules, in order:
//
//  1. Known (provider, provider user id) identity: idempotent repeat login.
//  2. A user already owns the profile's email: attach a new identity to
//     that user, never create a duplicate account for the same inbox.
//  3. Nobody owns the email: create user and identity in one transaction.
//
// The returned user is ready for session creation; OAuth sessions are
// always identity-verified.
func (s *Service) HandleCallback(ctx context.Context, provider, code string) (User, error) {
	adapter, ok := s.adapters[provider]
	if !ok {
		return User{}, ErrUnknownProvider
	}

	profile, err := adapter.ResolveProfile(ctx, code)
	if err != nil {
		return User{}, err
	}
	email := sanitizer.NormalizeEmail(profile.Email)
	if email == "" {
		return User{}, ErrNoPrimaryEmail
	}

	if identity, err := s.storage.FindIdentity(ctx, provider, profile.ProviderUserID); err == nil {
		user, err := s.storage.FindUserByID(ctx, identity.UserID)
		if err != nil {
			return User{}, fmt.Errorf("auth: identity points to missing user: %w", err)
		}
		return user, nil
	}

	now := s.now()
	user, err := s.storage.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.storage.CreateIdentity(ctx, Identity{
			ID:             uuid.New(),
			UserID:         user.ID,
			Provider:       provider,
			ProviderUserID: profile.ProviderUserID,
			Email:          email,
			CreatedAt:      now,
		}); err != nil {
			return User{}, fmt.Errorf("auth: failed to link identity: %w", err)
		}

	case errors.Is(err, ErrUserNotFound):
		user = User{
			ID:         uuid.New(),
			Email:      email,
			FirstName:  sanitizer.TrimName(profile.Name),
			Onboarding: OnboardingNotStarted,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		identity := Identity{
			ID:             uuid.New(),
			UserID:         user.ID,
			Provider:       provider,
			ProviderUserID: profile.ProviderUserID,
			Email:          email,
			CreatedAt:      now,
		}
		if err := s.storage.CreateUserWithIdentity(ctx, user, identity); err != nil {
			return User{}, fmt.Errorf("auth: failed to create user with identity: %w", err)
		}

	default:
		return User{}, fmt.Errorf("auth: user lookup failed: %w", err)
	}

	s.log.InfoContext(ctx, "oauth login",
		logger.UserID(user.ID.String()),
		logger.Provider(provider),
	)
	return user, nil
}

// Methods reports every way the user can currently log in.
func (s *Service) Methods(ctx context.Context, userID uuid.UUID) (AuthMethods, error) {
	var m AuthMethods
	if _, err := s.storage.FindCredential(ctx, userID); err == nil {
		m.HasPassword = true
	}

	identities, err := s.storage.FindUserIdentities(ctx, userID)
	if err != nil {
		return AuthMethods{}, fmt.Errorf("auth: identity lookup failed: %w", err)
	}
	for _, i := range identities {
		m.Providers = append(m.Providers, i.Provider)
	}
	return m, nil
}

// Disconnect removes the provider's identity, refusing when it is the last
// remaining login method. The caller is responsible for revoking sessions
// established through the disconnected provider.
func (s *Service) Disconnect(ctx context.Context, userID uuid.UUID, provider string) error {
	methods, err := s.Methods(ctx, userID)
	if err != nil {
		return err
	}

	linked := false
	for _, p := range methods.Providers {
		if p == provider {
			linked = true
			break
		}
	}
	if !linked {
		return ErrNotLinked
	}
	if !methods.CanDisconnect(provider) {
		return ErrLastAuthMethod
	}

	if err := s.storage.DeleteIdentity(ctx, userID, provider); err != nil {
		return fmt.Errorf("auth: failed to delete identity: %w", err)
	}

	s.log.InfoContext(ctx, "provider disconnected",
		logger.UserID(userID.String()),
		logger.Provider(provider),
	)
	return nil
}
