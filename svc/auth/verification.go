package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/launchkit/pkg/logger"
	"github.com/dmitrymomot/launchkit/pkg/totp"
	"github.com/dmitrymomot/launchkit/pkg/validator"
)

// issueEmailVerification upserts a fresh email token and dispatches the
// 6-digit code. The upsert supersedes any prior token, so at most one live
// code exists per user.
func (s *Service) issueEmailVerification(ctx context.Context, user User) error {
	secret, err := totp.GenerateSecret()
	if err != nil {
		return fmt.Errorf("auth: failed to generate totp secret: %w", err)
	}
	// The TOTP period equals the token TTL, making the code valid for the
	// whole window; single-use comes from the token row, not the code.
	code, err := totp.GenerateCode(secret, s.cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("auth: failed to derive code: %w", err)
	}

	now := s.now()
	if err := s.storage.UpsertToken(ctx, VerificationToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Type:      TokenTypeEmail,
		Secret:    secret,
		Code:      code,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("auth: failed to store verification token: %w", err)
	}

	s.sendMail(ctx, s.verificationEmail(user.Email, code))
	return nil
}

// ResendVerification re-issues the email code, enforcing the cooldown: a
// token updated within the cooldown window rejects the request with a
// CooldownError carrying the remaining wait.
func (s *Service) ResendVerification(ctx context.Context, userID uuid.UUID) error {
	token, err := s.storage.FindToken(ctx, userID, TokenTypeEmail)
	if err == nil {
		if token.Verified {
			return ErrAlreadyVerified
		}
		if elapsed := s.now().Sub(token.UpdatedAt); elapsed < s.cfg.ResendCooldown {
			return CooldownError{Wait: s.cfg.ResendCooldown - elapsed}
		}
	}

	user, err := s.storage.FindUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("auth: user lookup failed: %w", err)
	}
	return s.issueEmailVerification(ctx, user)
}

// VerifyEmail validates the submitted 6-digit code against the user's live
// token. On success the token is marked verified (kept for idempotent
// "already verified" checks) and the password credential's verified
// timestamp is set.
func (s *Service) VerifyEmail(ctx context.Context, userID uuid.UUID, code string) error {
	if err := validator.Apply(
		validator.NumericCode("code", code, totp.Digits),
	); err != nil {
		return err
	}

	token, err := s.storage.FindToken(ctx, userID, TokenTypeEmail)
	if err != nil {
		return ErrInvalidCode
	}
	if token.Verified {
		return ErrAlreadyVerified
	}
	if !token.Active(s.now()) {
		return ErrInvalidCode
	}

	ok, err := totp.Validate(token.Secret, code, s.cfg.TokenTTL)
	if err != nil || !ok {
		return ErrInvalidCode
	}

	if err := s.storage.MarkTokenVerified(ctx, token.ID); err != nil {
		return fmt.Errorf("auth: failed to mark token verified: %w", err)
	}
	if err := s.storage.MarkCredentialVerified(ctx, userID); err != nil {
		// OAuth-linked accounts may verify without a password credential.
		if !errors.Is(err, ErrNoPasswordLogin) {
			return fmt.Errorf("auth: failed to mark credential verified: %w", err)
		}
	}

	s.log.InfoContext(ctx, "email verified", logger.UserID(userID.String()))
	return nil
}
