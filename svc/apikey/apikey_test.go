package apikey_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/launchkit/svc/apikey"
)

type memStorage struct {
	mu   sync.Mutex
	keys map[uuid.UUID]apikey.APIKey
}

func newMemStorage() *memStorage {
	return &memStorage{keys: make(map[uuid.UUID]apikey.APIKey)}
}

func (m *memStorage) CreateAPIKey(ctx context.Context, k apikey.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[k.ID] = k
	return nil
}

func (m *memStorage) FindAPIKeyByHash(ctx context.Context, hash string) (apikey.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.keys {
		if k.Hash == hash {
			return k, nil
		}
	}
	return apikey.APIKey{}, apikey.ErrKeyNotFound
}

func (m *memStorage) ListAPIKeys(ctx context.Context, orgID uuid.UUID) ([]apikey.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []apikey.APIKey
	for _, k := range m.keys {
		if k.OrgID == orgID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *memStorage) DeleteAPIKey(ctx context.Context, orgID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[id]
	if !ok || k.OrgID != orgID {
		return apikey.ErrKeyNotFound
	}
	delete(m.keys, id)
	return nil
}

func TestService_CreateAndResolve(t *testing.T) {
	t.Parallel()

	svc := apikey.NewService(newMemStorage())
	ctx := context.Background()
	orgID := uuid.New()

	k, plaintext, err := svc.Create(ctx, orgID, uuid.New(), "ci-pipeline")
	require.NoError(t, err)
	require.Len(t, plaintext, 64)
	assert.Equal(t, plaintext[60:], k.LastFour)
	assert.NotContains(t, k.Hash, plaintext[:8], "plaintext is not stored")

	resolved, err := svc.Resolve(ctx, plaintext)
	require.NoError(t, err)
	assert.Equal(t, orgID, resolved.OrgID)

	_, err = svc.Resolve(ctx, "not-a-real-key")
	require.ErrorIs(t, err, apikey.ErrInvalidKey)

	_, err = svc.Resolve(ctx, "")
	require.ErrorIs(t, err, apikey.ErrInvalidKey)
}

func TestService_Revoke(t *testing.T) {
	t.Parallel()

	svc := apikey.NewService(newMemStorage())
	ctx := context.Background()
	orgID := uuid.New()

	k, plaintext, err := svc.Create(ctx, orgID, uuid.New(), "temp")
	require.NoError(t, err)

	// another org cannot revoke the key
	require.ErrorIs(t, svc.Revoke(ctx, uuid.New(), k.ID), apikey.ErrKeyNotFound)

	require.NoError(t, svc.Revoke(ctx, orgID, k.ID))
	_, err = svc.Resolve(ctx, plaintext)
	require.ErrorIs(t, err, apikey.ErrInvalidKey)
}

func TestRequireAPIKey(t *testing.T) {
	t.Parallel()

	svc := apikey.NewService(newMemStorage())
	ctx := context.Background()
	orgID := uuid.New()

	_, plaintext, err := svc.Create(ctx, orgID, uuid.New(), "client")
	require.NoError(t, err)

	var gotOrg uuid.UUID
	handler := svc.RequireAPIKey(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOrg, _ = apikey.OrgFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid key resolves organization", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/issues", nil)
		req.Header.Set(apikey.HeaderName, plaintext)

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, orgID, gotOrg)
	})

	t.Run("missing key is unauthorized", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/issues", nil)

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown key is unauthorized", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/issues", nil)
		req.Header.Set(apikey.HeaderName, "0000000000000000000000000000000000000000000000000000000000000000")

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
