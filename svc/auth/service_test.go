package auth_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/launchkit/pkg/validator"
	"github.com/dmitrymomot/launchkit/svc/auth"
)

func timeNow() time.Time { return time.Now() }

var codeRe = regexp.MustCompile(`\b(\d{6})\b`)

func testService(t *testing.T, storage auth.Storage, sender *capturingSender, opts ...auth.Option) *auth.Service {
	t.Helper()
	cfg := auth.Config{
		AppURL:         "https://app.test",
		TokenTTL:       15 * time.Minute,
		ResendCooldown: time.Minute,
		BcryptCost:     4, // min cost keeps the suite fast
	}
	opts = append([]auth.Option{auth.WithSynchronousMail()}, opts...)
	return auth.NewService(storage, sender, cfg, opts...)
}

// extractCode pulls the 6-digit code out of the latest verification email.
func extractCode(t *testing.T, sender *capturingSender) string {
	t.Helper()
	emails := sender.byTag("email-verification")
	require.NotEmpty(t, emails)
	match := codeRe.FindStringSubmatch(emails[len(emails)-1].BodyHTML)
	require.NotNil(t, match, "verification email must contain a 6-digit code")
	return match[1]
}

// extractResetCode pulls the hex code out of the latest reset email.
func extractResetCode(t *testing.T, sender *capturingSender) string {
	t.Helper()
	emails := sender.byTag("password-reset")
	require.NotEmpty(t, emails)
	re := regexp.MustCompile(`code=([0-9a-f]{64})`)
	match := re.FindStringSubmatch(emails[len(emails)-1].BodyHTML)
	require.NotNil(t, match, "reset email must contain the hex code")
	return match[1]
}

func TestRegisterAndVerifyFlow(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	sender := &capturingSender{}
	svc := testService(t, storage, sender)
	ctx := context.Background()

	user, err := svc.Register(ctx, "A@B.com", "Aa1!aaaa", "Ada", "Lovelace")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email, "email is stored lowercased")
	assert.Equal(t, auth.OnboardingNotStarted, user.Onboarding)

	// login works but the identity is not yet verified
	loggedIn, verified, err := svc.Login(ctx, "a@b.com", "Aa1!aaaa")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.False(t, verified)

	// correct code verifies token and credential
	code := extractCode(t, sender)
	require.NoError(t, svc.VerifyEmail(ctx, user.ID, code))

	_, verified, err = svc.Login(ctx, "a@b.com", "Aa1!aaaa")
	require.NoError(t, err)
	assert.True(t, verified)

	// replaying the same code reports already-verified, not success
	require.ErrorIs(t, svc.VerifyEmail(ctx, user.ID, code), auth.ErrAlreadyVerified)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	svc := testService(t, newMemStorage(), &capturingSender{})
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", "weak", "", "")
	var vErrs validator.ValidationErrors
	require.ErrorAs(t, err, &vErrs)
	assert.Contains(t, vErrs.Fields(), "email")
	assert.Contains(t, vErrs.Fields(), "password")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	sender := &capturingSender{}
	svc := testService(t, storage, sender)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dup@example.com", "Aa1!aaaa", "", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "DUP@example.com", "Bb2!bbbb", "", "")
	require.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestRegister_LinksPasswordToOAuthOnlyAccount(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	sender := &capturingSender{}
	adapter := &fakeAdapter{
		id: auth.ProviderGoogle,
		profile: auth.ProviderProfile{
			ProviderUserID: "g-123",
			Email:          "mixed@example.com",
			EmailVerified:  true,
		},
	}
	svc := testService(t, storage, sender, auth.WithProvider(adapter))
	ctx := context.Background()

	oauthUser, err := svc.HandleCallback(ctx, auth.ProviderGoogle, "any-code")
	require.NoError(t, err)

	// registering with the same email converts the account, no duplicate user
	registered, err := svc.Register(ctx, "mixed@example.com", "Aa1!aaaa", "", "")
	require.NoError(t, err)
	assert.Equal(t, oauthUser.ID, registered.ID)

	methods, err := svc.Methods(ctx, oauthUser.ID)
	require.NoError(t, err)
	assert.True(t, methods.HasPassword)
	assert.Equal(t, []string{auth.ProviderGoogle}, methods.Providers)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	svc := testService(t, storage, &capturingSender{})
	ctx := context.Background()

	_, err := svc.Register(ctx, "user@example.com", "Aa1!aaaa", "", "")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "user@example.com", "wrong-password")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	// unknown email is indistinguishable from a wrong password
	_, _, err = svc.Login(ctx, "ghost@example.com", "Aa1!aaaa")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestResendVerification_Cooldown(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	sender := &capturingSender{}

	now := time.Now()
	clock := now
	svc := testService(t, storage, sender, auth.WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	user, err := svc.Register(ctx, "cool@example.com", "Aa1!aaaa", "", "")
	require.NoError(t, err)

	// immediate resend is rejected with the remaining wait
	err = svc.ResendVerification(ctx, user.ID)
	var cooldown auth.CooldownError
	require.ErrorAs(t, err, &cooldown)
	assert.InDelta(t, time.Minute.Seconds(), cooldown.RetryAfter().Seconds(), 1)

	// after the cooldown a fresh token is issued and supersedes the old one
	clock = now.Add(2 * time.Minute)
	require.NoError(t, svc.ResendVerification(ctx, user.ID))
	assert.Len(t, sender.byTag("email-verification"), 2)

	// exactly one live token per (user, type)
	assert.Len(t, storage.tokens, 1)
}

func TestVerifyEmail_SingleActiveToken(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	sender := &capturingSender{}

	now := time.Now()
	clock := now
	svc := testService(t, storage, sender, auth.WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	user, err := svc.Register(ctx, "tok@example.com", "Aa1!aaaa", "", "")
	require.NoError(t, err)
	firstCode := extractCode(t, sender)

	clock = now.Add(2 * time.Minute)
	require.NoError(t, svc.ResendVerification(ctx, user.ID))
	secondCode := extractCode(t, sender)

	if firstCode != secondCode {
		require.ErrorIs(t, svc.VerifyEmail(ctx, user.ID, firstCode), auth.ErrInvalidCode)
	}
	require.NoError(t, svc.VerifyEmail(ctx, user.ID, secondCode))
}

func TestVerifyEmail_BadInput(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	sender := &capturingSender{}
	svc := testService(t, storage, sender)
	ctx := context.Background()

	user, err := svc.Register(ctx, "bad@example.com", "Aa1!aaaa", "", "")
	require.NoError(t, err)

	var vErrs validator.ValidationErrors
	require.ErrorAs(t, svc.VerifyEmail(ctx, user.ID, "12ab56"), &vErrs)

	require.ErrorIs(t, svc.VerifyEmail(ctx, user.ID, "000000"), auth.ErrInvalidCode)
}

func TestPasswordResetFlow(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	sender := &capturingSender{}
	svc := testService(t, storage, sender)
	ctx := context.Background()

	_, err := svc.Register(ctx, "reset@example.com", "Aa1!aaaa", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "reset@example.com"))
	code := extractResetCode(t, sender)

	require.NoError(t, svc.ResetPassword(ctx, code, "Cc3!cccc"))

	// new password works, old one does not
	_, verified, err := svc.Login(ctx, "reset@example.com", "Cc3!cccc")
	require.NoError(t, err)
	assert.True(t, verified, "proving inbox control also verifies the email")

	_, _, err = svc.Login(ctx, "reset@example.com", "Aa1!aaaa")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	// the link is single-use: the row was deleted
	require.ErrorIs(t, svc.ResetPassword(ctx, code, "Dd4!dddd"), auth.ErrInvalidResetLink)
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	t.Parallel()

	sender := &capturingSender{}
	svc := testService(t, newMemStorage(), sender)

	require.NoError(t, svc.ForgotPassword(context.Background(), "nobody@example.com"))
	assert.Empty(t, sender.byTag("password-reset"))
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	svc := testService(t, storage, &capturingSender{})
	ctx := context.Background()

	user, err := svc.Register(ctx, "change@example.com", "Aa1!aaaa", "", "")
	require.NoError(t, err)

	// wrong current password is a field-level validation error
	err = svc.ChangePassword(ctx, user.ID, "nope", "Bb2!bbbb")
	var vErrs validator.ValidationErrors
	require.ErrorAs(t, err, &vErrs)
	assert.Contains(t, vErrs.Fields(), "current_password")

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "Aa1!aaaa", "Bb2!bbbb"))

	_, _, err = svc.Login(ctx, "change@example.com", "Bb2!bbbb")
	require.NoError(t, err)
}
