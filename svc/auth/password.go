package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/launchkit/pkg/keygen"
	"github.com/dmitrymomot/launchkit/pkg/logger"
	"github.com/dmitrymomot/launchkit/pkg/sanitizer"
	"github.com/dmitrymomot/launchkit/pkg/validator"
)

// Register creates a password account, or adds a password credential to an
// existing OAuth-only account with the same email. A verification token is
// issued and emailed either way; the session the caller starts afterwards
// remains unverified until the code is confirmed.
func (s *Service) Register(ctx context.Context, email, password, firstName, lastName string) (User, error) {
	email = sanitizer.NormalizeEmail(email)
	if err := validator.Apply(
		validator.Required("email", email),
		validator.ValidEmail("email", email),
		validator.Required("password", password),
		validator.StrongPassword("password", password, validator.DefaultPasswordStrength()),
	); err != nil {
		return User{}, err
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	user, err := s.storage.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		// Existing account. With a password credential this is a duplicate
		// registration; OAuth-only accounts get converted to multi-method
		// instead of spawning a second user for the same email.
		if _, credErr := s.storage.FindCredential(ctx, user.ID); credErr == nil {
			return User{}, ErrEmailTaken
		}
		if err := s.storage.CreateCredential(ctx, Credential{
			UserID:       user.ID,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			return User{}, fmt.Errorf("auth: failed to link password: %w", err)
		}

	case errors.Is(err, ErrUserNotFound):
		user = User{
			ID:         uuid.New(),
			Email:      email,
			FirstName:  sanitizer.TrimName(firstName),
			LastName:   sanitizer.TrimName(lastName),
			Onboarding: OnboardingNotStarted,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.storage.CreateUser(ctx, user); err != nil {
			return User{}, fmt.Errorf("auth: failed to create user: %w", err)
		}
		if err := s.storage.CreateCredential(ctx, Credential{
			UserID:       user.ID,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			return User{}, fmt.Errorf("auth: failed to create credential: %w", err)
		}

	default:
		return User{}, fmt.Errorf("auth: user lookup failed: %w", err)
	}

	if err := s.issueEmailVerification(ctx, user); err != nil {
		return User{}, err
	}

	s.log.InfoContext(ctx, "user registered", logger.UserID(user.ID.String()))
	return user, nil
}

// Login verifies email+password and returns the user along with whether the
// credential's email was confirmed (drives the session's identityVerified
// flag). Unknown emails and wrong passwords are indistinguishable.
func (s *Service) Login(ctx context.Context, email, password string) (User, bool, error) {
	email = sanitizer.NormalizeEmail(email)
	if err := validator.Apply(
		validator.Required("email", email),
		validator.Required("password", password),
	); err != nil {
		return User{}, false, err
	}

	user, err := s.storage.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, false, ErrInvalidCredentials
		}
		return User{}, false, fmt.Errorf("auth: user lookup failed: %w", err)
	}

	cred, err := s.storage.FindCredential(ctx, user.ID)
	if err != nil {
		return User{}, false, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return User{}, false, ErrInvalidCredentials
	}

	return user, cred.Verified(), nil
}

// ChangePassword rotates the password after checking the current one.
// A wrong current password is a field-level validation error, not a fault.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	cred, err := s.storage.FindCredential(ctx, userID)
	if err != nil {
		return ErrNoPasswordLogin
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(current)) != nil {
		return validator.ValidationErrors{{Field: "current_password", Message: "current password is incorrect"}}
	}
	if err := validator.Apply(
		validator.StrongPassword("new_password", next, validator.DefaultPasswordStrength()),
	); err != nil {
		return err
	}

	hash, err := s.hashPassword(next)
	if err != nil {
		return err
	}
	if err := s.storage.UpdateCredentialPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("auth: failed to update password: %w", err)
	}
	return nil
}

// ForgotPassword issues a single-use reset link. Unknown emails succeed
// silently so the endpoint cannot be used to enumerate accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = sanitizer.NormalizeEmail(email)
	if err := validator.Apply(
		validator.Required("email", email),
		validator.ValidEmail("email", email),
	); err != nil {
		return err
	}

	user, err := s.storage.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("auth: user lookup failed: %w", err)
	}

	// The reset code doubles as the lookup secret. Replay resistance comes
	// from deleting the row on use, not from time-windowing.
	token, err := keygen.ResetToken()
	if err != nil {
		return fmt.Errorf("auth: failed to generate reset token: %w", err)
	}

	now := s.now()
	if err := s.storage.UpsertToken(ctx, VerificationToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Type:      TokenTypePasswordReset,
		Secret:    token,
		Code:      token,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("auth: failed to store reset token: %w", err)
	}

	s.sendMail(ctx, s.resetEmail(user.Email, token))
	return nil
}

// ResetPassword consumes a reset link. The token row is deleted on success,
// which is what makes the link single-use. Accounts without a password
// credential gain one here; proving control of the inbox also counts as
// email verification.
func (s *Service) ResetPassword(ctx context.Context, code, password string) error {
	if err := validator.Apply(
		validator.Required("code", code),
		validator.StrongPassword("password", password, validator.DefaultPasswordStrength()),
	); err != nil {
		return err
	}

	token, err := s.storage.FindTokenByCode(ctx, code, TokenTypePasswordReset)
	if err != nil {
		return ErrInvalidResetLink
	}
	if !token.Active(s.now()) {
		return ErrInvalidResetLink
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}

	now := s.now()
	if _, err := s.storage.FindCredential(ctx, token.UserID); err != nil {
		if createErr := s.storage.CreateCredential(ctx, Credential{
			UserID:       token.UserID,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}); createErr != nil {
			return fmt.Errorf("auth: failed to create credential: %w", createErr)
		}
	} else if err := s.storage.UpdateCredentialPassword(ctx, token.UserID, hash); err != nil {
		return fmt.Errorf("auth: failed to update password: %w", err)
	}

	if err := s.storage.MarkCredentialVerified(ctx, token.UserID); err != nil {
		return fmt.Errorf("auth: failed to mark credential verified: %w", err)
	}
	if err := s.storage.DeleteToken(ctx, token.ID); err != nil {
		return fmt.Errorf("auth: failed to consume reset token: %w", err)
	}

	s.log.InfoContext(ctx, "password reset completed", logger.UserID(token.UserID.String()))
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", errors.Join(ErrHashingFailed, err)
	}
	return string(hash), nil
}
