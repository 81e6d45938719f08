package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/launchkit/svc/auth"
)

func googleProfile(id, email string) auth.ProviderProfile {
	return auth.ProviderProfile{
		ProviderUserID: id,
		Email:          email,
		EmailVerified:  true,
		Name:           "Test User",
	}
}

func TestHandleCallback_CreatesUserWithIdentity(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	adapter := &fakeAdapter{id: auth.ProviderGoogle, profile: googleProfile("g-1", "New@Example.com")}
	svc := testService(t, storage, &capturingSender{}, auth.WithProvider(adapter))
	ctx := context.Background()

	user, err := svc.HandleCallback(ctx, auth.ProviderGoogle, "code")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)

	methods, err := svc.Methods(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, methods.HasPassword)
	assert.Equal(t, []string{auth.ProviderGoogle}, methods.Providers)
}

func TestHandleCallback_ReusesUserByEmail(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	adapter := &fakeAdapter{id: auth.ProviderGithub, profile: googleProfile("gh-7", "existing@example.com")}
	svc := testService(t, storage, &capturingSender{}, auth.WithProvider(adapter))
	ctx := context.Background()

	registered, err := svc.Register(ctx, "existing@example.com", "Aa1!aaaa", "", "")
	require.NoError(t, err)

	linked, err := svc.HandleCallback(ctx, auth.ProviderGithub, "code")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, linked.ID, "no duplicate account for the same email")

	methods, err := svc.Methods(ctx, registered.ID)
	require.NoError(t, err)
	assert.True(t, methods.HasPassword)
	assert.Equal(t, []string{auth.ProviderGithub}, methods.Providers)
}

func TestHandleCallback_IdempotentRepeatLogin(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	adapter := &fakeAdapter{id: auth.ProviderGoogle, profile: googleProfile("g-9", "repeat@example.com")}
	svc := testService(t, storage, &capturingSender{}, auth.WithProvider(adapter))
	ctx := context.Background()

	first, err := svc.HandleCallback(ctx, auth.ProviderGoogle, "code")
	require.NoError(t, err)

	second, err := svc.HandleCallback(ctx, auth.ProviderGoogle, "code")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	identities, err := storage.FindUserIdentities(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, identities, 1, "repeat login must not duplicate the identity")
}

func TestHandleCallback_Errors(t *testing.T) {
	t.Parallel()

	svc := testService(t, newMemStorage(), &capturingSender{},
		auth.WithProvider(&fakeAdapter{id: auth.ProviderGoogle, fail: true}),
		auth.WithProvider(&fakeAdapter{id: auth.ProviderGithub, profile: auth.ProviderProfile{ProviderUserID: "x"}}),
	)
	ctx := context.Background()

	_, err := svc.HandleCallback(ctx, "gitlab", "code")
	require.ErrorIs(t, err, auth.ErrUnknownProvider)

	_, err = svc.HandleCallback(ctx, auth.ProviderGoogle, "bad-code")
	require.ErrorIs(t, err, auth.ErrInvalidOAuth)

	_, err = svc.HandleCallback(ctx, auth.ProviderGithub, "code")
	require.ErrorIs(t, err, auth.ErrNoPrimaryEmail)
}

func TestDisconnect_Invariant(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	adapter := &fakeAdapter{id: auth.ProviderGoogle, profile: googleProfile("g-2", "solo@example.com")}
	svc := testService(t, storage, &capturingSender{}, auth.WithProvider(adapter))
	ctx := context.Background()

	user, err := svc.HandleCallback(ctx, auth.ProviderGoogle, "code")
	require.NoError(t, err)

	// the only login method cannot be removed
	require.ErrorIs(t, svc.Disconnect(ctx, user.ID, auth.ProviderGoogle), auth.ErrLastAuthMethod)

	// adding a password makes the disconnect legal
	_, err = svc.Register(ctx, "solo@example.com", "Aa1!aaaa", "", "")
	require.NoError(t, err)
	require.NoError(t, svc.Disconnect(ctx, user.ID, auth.ProviderGoogle))

	methods, err := svc.Methods(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, methods.HasPassword)
	assert.Empty(t, methods.Providers)

	// disconnecting a provider that is not linked is rejected
	require.ErrorIs(t, svc.Disconnect(ctx, user.ID, auth.ProviderGoogle), auth.ErrNotLinked)
}

func TestAuthURL(t *testing.T) {
	t.Parallel()

	svc := testService(t, newMemStorage(), &capturingSender{},
		auth.WithProvider(&fakeAdapter{id: auth.ProviderGoogle}),
	)

	url, err := svc.AuthURL(auth.ProviderGoogle, "state-123")
	require.NoError(t, err)
	assert.Contains(t, url, "state=state-123")

	_, err = svc.AuthURL("unknown", "state")
	require.ErrorIs(t, err, auth.ErrUnknownProvider)
}
