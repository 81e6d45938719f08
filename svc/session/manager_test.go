package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/launchkit/pkg/cookie"
	"github.com/dmitrymomot/launchkit/svc/session"
)

type memStore struct {
	mu       sync.Mutex
	sessions map[string]session.Session
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]session.Session)}
}

func (m *memStore) CreateSession(ctx context.Context, s session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	return nil
}

func (m *memStore) FindSession(ctx context.Context, token string) (session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return session.Session{}, session.ErrNoSession
	}
	return s, nil
}

func (m *memStore) DeleteSession(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *memStore) DeleteUserProviderSessions(ctx context.Context, userID uuid.UUID, provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, s := range m.sessions {
		if s.UserID == userID && s.Provider == provider {
			delete(m.sessions, token)
		}
	}
	return nil
}

func testConfig() session.Config {
	return session.Config{
		CookieName: "session",
		TTL:        30 * 24 * time.Hour,
		LoginPath:  "/auth/login",
		VerifyPath: "/auth/verify-email",
	}
}

func newManager(t *testing.T, store session.Store, opts ...session.ManagerOption) *session.Manager {
	t.Helper()
	cookies, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	return session.NewManager(store, cookies, testConfig(), opts...)
}

// startSession runs Start and returns a request carrying the resulting cookie.
func startSession(t *testing.T, m *session.Manager, userID uuid.UUID, method session.AuthMethod, provider string, verified bool) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	_, err := m.Start(context.Background(), rec, userID, method, provider, verified)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestManager_StartAndLoad(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	m := newManager(t, store)
	userID := uuid.New()

	req := startSession(t, m, userID, session.AuthMethodOAuth, "google", true)

	s, err := m.Load(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, userID, s.UserID)
	assert.Equal(t, session.AuthMethodOAuth, s.AuthMethod)
	assert.Equal(t, "google", s.Provider)
	assert.True(t, s.IdentityVerified)
}

func TestManager_Load_NoCookie(t *testing.T) {
	t.Parallel()

	m := newManager(t, newMemStore())
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)

	_, err := m.Load(context.Background(), req)
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestManager_Load_Expired(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	now := time.Now()
	clock := &now
	m := newManager(t, store, session.WithClock(func() time.Time { return *clock }))

	req := startSession(t, m, uuid.New(), session.AuthMethodEmail, "", true)

	later := now.Add(31 * 24 * time.Hour)
	clock = &later

	_, err := m.Load(context.Background(), req)
	require.ErrorIs(t, err, session.ErrNoSession)

	// expired row is removed eagerly
	assert.Empty(t, store.sessions)
}

func TestManager_Destroy(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	m := newManager(t, store)

	req := startSession(t, m, uuid.New(), session.AuthMethodEmail, "", true)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Destroy(context.Background(), rec, req))
	assert.Empty(t, store.sessions)

	_, err := m.Load(context.Background(), req)
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestManager_DestroyProviderSessions(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	m := newManager(t, store)
	userID := uuid.New()

	startSession(t, m, userID, session.AuthMethodOAuth, "google", true)
	startSession(t, m, userID, session.AuthMethodOAuth, "github", true)

	rec := httptest.NewRecorder()
	require.NoError(t, m.DestroyProviderSessions(context.Background(), rec, userID, "google", true))

	remaining := 0
	for _, s := range store.sessions {
		remaining++
		assert.Equal(t, "github", s.Provider)
	}
	assert.Equal(t, 1, remaining)
}

func TestMiddleware_Gates(t *testing.T) {
	t.Parallel()

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("no session redirects to login with redirectTo", func(t *testing.T) {
		t.Parallel()

		m := newManager(t, newMemStore())
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard?tab=issues", nil)

		m.RequireUser(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/auth/login?redirectTo=%2Fdashboard%3Ftab%3Dissues", rec.Header().Get("Location"))
	})

	t.Run("unverified email session is sent to verification", func(t *testing.T) {
		t.Parallel()

		m := newManager(t, newMemStore())
		req := startSession(t, m, uuid.New(), session.AuthMethodEmail, "", false)
		rec := httptest.NewRecorder()

		m.RequireUser(m.RequireVerified(okHandler)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/auth/verify-email", rec.Header().Get("Location"))
	})

	t.Run("oauth session passes the verification gate", func(t *testing.T) {
		t.Parallel()

		m := newManager(t, newMemStore())
		req := startSession(t, m, uuid.New(), session.AuthMethodOAuth, "github", true)
		rec := httptest.NewRecorder()

		m.RequireUser(m.RequireVerified(okHandler)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("verified email session passes", func(t *testing.T) {
		t.Parallel()

		m := newManager(t, newMemStore())
		req := startSession(t, m, uuid.New(), session.AuthMethodEmail, "", true)
		rec := httptest.NewRecorder()

		m.RequireUser(m.RequireVerified(okHandler)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
