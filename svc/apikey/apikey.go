package apikey

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/launchkit/pkg/keygen"
	"github.com/dmitrymomot/launchkit/pkg/logger"
	"github.com/dmitrymomot/launchkit/pkg/validator"
)

var (
	ErrKeyNotFound = errors.New("apikey: key not found")
	ErrInvalidKey  = errors.New("apikey: invalid api key")
)

// APIKey is the stored form of a key. The plaintext exists only in the
// create response; afterwards LastFour is all that is ever echoed back.
type APIKey struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	CreatedBy uuid.UUID
	Name      string
	Hash      string
	LastFour  string
	CreatedAt time.Time
}

// Storage persists API keys.
type Storage interface {
	CreateAPIKey(ctx context.Context, k APIKey) error
	FindAPIKeyByHash(ctx context.Context, hash string) (APIKey, error)
	ListAPIKeys(ctx context.Context, orgID uuid.UUID) ([]APIKey, error)
	DeleteAPIKey(ctx context.Context, orgID, id uuid.UUID) error
}

// Service manages the key lifecycle.
type Service struct {
	storage Storage
	log     *slog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the API key service.
func NewService(storage Storage, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create issues a new key under the organization and returns both the
// record and the plaintext. The plaintext is never recoverable afterwards.
func (s *Service) Create(ctx context.Context, orgID, createdBy uuid.UUID, name string) (APIKey, string, error) {
	if err := validator.Apply(
		validator.Required("name", name),
	); err != nil {
		return APIKey{}, "", err
	}

	raw, err := keygen.APIKey()
	if err != nil {
		return APIKey{}, "", fmt.Errorf("apikey: failed to generate key: %w", err)
	}

	k := APIKey{
		ID:        uuid.New(),
		OrgID:     orgID,
		CreatedBy: createdBy,
		Name:      name,
		Hash:      keygen.HashKey(raw),
		LastFour:  keygen.LastFour(raw),
		CreatedAt: s.now(),
	}
	if err := s.storage.CreateAPIKey(ctx, k); err != nil {
		return APIKey{}, "", fmt.Errorf("apikey: failed to store key: %w", err)
	}

	s.log.InfoContext(ctx, "api key created",
		logger.OrganizationID(orgID.String()),
		slog.String("key_name", name),
	)
	return k, raw, nil
}

// Resolve looks up a presented key by its hash. Unknown and malformed keys
// are indistinguishable to the caller.
func (s *Service) Resolve(ctx context.Context, raw string) (APIKey, error) {
	if raw == "" {
		return APIKey{}, ErrInvalidKey
	}
	k, err := s.storage.FindAPIKeyByHash(ctx, keygen.HashKey(raw))
	if err != nil {
		return APIKey{}, ErrInvalidKey
	}
	return k, nil
}

// List returns the organization's keys, hashes included but plaintext gone.
func (s *Service) List(ctx context.Context, orgID uuid.UUID) ([]APIKey, error) {
	return s.storage.ListAPIKeys(ctx, orgID)
}

// Revoke deletes a key. Scoped by organization so a key id from another
// tenant cannot be revoked.
func (s *Service) Revoke(ctx context.Context, orgID, id uuid.UUID) error {
	if err := s.storage.DeleteAPIKey(ctx, orgID, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "api key revoked", logger.OrganizationID(orgID.String()))
	return nil
}
