package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/launchkit/pkg/cache"
)

// UpdateAvatar validates and stores the uploaded image, records its object
// key on the user, and drops any cached URL for the old image.
func (s *Service) UpdateAvatar(ctx context.Context, userID uuid.UUID, content []byte) (string, error) {
	if s.avatars == nil {
		return "", errors.New("auth: avatar storage is not configured")
	}

	key := fmt.Sprintf("avatars/%s", userID)
	if err := s.avatars.Put(ctx, key, content); err != nil {
		return "", err
	}
	if err := s.storage.UpdateUserAvatar(ctx, userID, key); err != nil {
		return "", fmt.Errorf("auth: failed to record avatar path: %w", err)
	}

	if s.avatarCache != nil {
		_ = s.avatarCache.Delete(ctx, userID.String())
	}
	return key, nil
}

// AvatarURL returns a presigned GET URL for the user's avatar, empty when
// none is set. URLs are cached with a TTL below the presign expiry; cache
// failures degrade to a fresh presign rather than an error.
func (s *Service) AvatarURL(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.storage.FindUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("auth: user lookup failed: %w", err)
	}
	if user.AvatarPath == "" || s.avatars == nil {
		return "", nil
	}

	if s.avatarCache != nil {
		if url, err := s.avatarCache.Get(ctx, userID.String()); err == nil {
			return url, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WarnContext(ctx, "avatar url cache read failed", "error", err)
		}
	}

	url, err := s.avatars.PresignedURL(ctx, user.AvatarPath)
	if err != nil {
		return "", err
	}
	if s.avatarCache != nil {
		_ = s.avatarCache.Set(ctx, userID.String(), url)
	}
	return url, nil
}
