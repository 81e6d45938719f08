package publicapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/launchkit/modules/publicapi"
	"github.com/dmitrymomot/launchkit/svc/apikey"
	"github.com/dmitrymomot/launchkit/svc/issue"
	"github.com/dmitrymomot/launchkit/svc/rbac"
)

// memRoles grants every member write access to issues except the ones
// flagged read-only.
type memRoles struct {
	mu       sync.Mutex
	writer   rbac.Role
	reader   rbac.Role
	readOnly map[uuid.UUID]bool
}

func newMemRoles() *memRoles {
	return &memRoles{
		writer:   rbac.Role{ID: uuid.New(), Name: rbac.RoleAdmin, DisplayName: "Administrator"},
		reader:   rbac.Role{ID: uuid.New(), Name: rbac.RoleViewer, DisplayName: "Viewer"},
		readOnly: make(map[uuid.UUID]bool),
	}
}

func (m *memRoles) FindDefaultOrgRole(ctx context.Context, userID uuid.UUID) (rbac.Role, error) {
	return m.FindMemberRole(ctx, uuid.Nil, userID)
}

func (m *memRoles) FindMemberRole(ctx context.Context, orgID, userID uuid.UUID) (rbac.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readOnly[userID] {
		return m.reader, nil
	}
	return m.writer, nil
}

func (m *memRoles) FindPermissionsForRole(ctx context.Context, roleID uuid.UUID) ([]rbac.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	perms := []rbac.Permission{{Action: rbac.ActionRead, Entity: rbac.EntityIssues, Access: rbac.AccessAny}}
	if roleID == m.writer.ID {
		perms = append(perms, rbac.Permission{Action: rbac.ActionWrite, Entity: rbac.EntityIssues, Access: rbac.AccessAny})
	}
	return perms, nil
}

type memKeys struct {
	mu   sync.Mutex
	keys map[uuid.UUID]apikey.APIKey
}

func (m *memKeys) CreateAPIKey(ctx context.Context, k apikey.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[k.ID] = k
	return nil
}

func (m *memKeys) FindAPIKeyByHash(ctx context.Context, hash string) (apikey.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.keys {
		if k.Hash == hash {
			return k, nil
		}
	}
	return apikey.APIKey{}, apikey.ErrKeyNotFound
}

func (m *memKeys) ListAPIKeys(ctx context.Context, orgID uuid.UUID) ([]apikey.APIKey, error) {
	return nil, nil
}

func (m *memKeys) DeleteAPIKey(ctx context.Context, orgID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, id)
	return nil
}

type memIssues struct {
	mu     sync.Mutex
	issues map[uuid.UUID]issue.Issue
}

func (m *memIssues) CreateIssue(ctx context.Context, i issue.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issues[i.ID] = i
	return nil
}

func (m *memIssues) FindIssue(ctx context.Context, orgID, id uuid.UUID) (issue.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.issues[id]
	if !ok || i.OrgID != orgID {
		return issue.Issue{}, issue.ErrIssueNotFound
	}
	return i, nil
}

func (m *memIssues) ListIssues(ctx context.Context, orgID uuid.UUID) ([]issue.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []issue.Issue
	for _, i := range m.issues {
		if i.OrgID == orgID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *memIssues) UpdateIssue(ctx context.Context, i issue.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.issues[i.ID]; !ok {
		return issue.ErrIssueNotFound
	}
	m.issues[i.ID] = i
	return nil
}

func (m *memIssues) DeleteIssue(ctx context.Context, orgID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.issues[id]
	if !ok || i.OrgID != orgID {
		return issue.ErrIssueNotFound
	}
	delete(m.issues, id)
	return nil
}

type testEnv struct {
	server    *httptest.Server
	plaintext string
	orgID     uuid.UUID
	keySvc    *apikey.Service
	roles     *memRoles
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	keySvc := apikey.NewService(&memKeys{keys: make(map[uuid.UUID]apikey.APIKey)})
	issueSvc := issue.NewService(&memIssues{issues: make(map[uuid.UUID]issue.Issue)})
	roles := newMemRoles()
	permSvc := rbac.NewService(roles)

	orgID := uuid.New()
	_, plaintext, err := keySvc.Create(context.Background(), orgID, uuid.New(), "test-client")
	require.NoError(t, err)

	h := publicapi.NewHandler(keySvc, permSvc, issueSvc)
	server := httptest.NewServer(h.Handle())
	t.Cleanup(server.Close)

	return testEnv{server: server, plaintext: plaintext, orgID: orgID, keySvc: keySvc, roles: roles}
}

func (e testEnv) do(t *testing.T, method, path string, body any, key string) *http.Response {
	t.Helper()
	var payload *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(b)
	} else {
		payload = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.server.URL+path, payload)
	require.NoError(t, err)
	if key != "" {
		req.Header.Set(apikey.HeaderName, key)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Data
}

func TestIssueLifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/issues", map[string]string{
		"title":       "Checkout broken",
		"description": "payment form 500s",
	}, env.plaintext)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeData(t, resp)
	assert.Equal(t, "open", created["status"])
	id := created["id"].(string)

	resp = env.do(t, http.MethodGet, "/issues/"+id, nil, env.plaintext)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPatch, "/issues/"+id, map[string]string{
		"status": "closed",
	}, env.plaintext)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeData(t, resp)
	assert.Equal(t, "closed", updated["status"])
	assert.Equal(t, "Checkout broken", updated["title"])

	resp = env.do(t, http.MethodDelete, "/issues/"+id, nil, env.plaintext)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/issues/"+id, nil, env.plaintext)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRequestsWithoutKeyAreRejected(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/issues", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/issues", nil, "not-a-key")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestTenantIsolation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	// create an issue under the first org
	resp := env.do(t, http.MethodPost, "/issues", map[string]string{"title": "secret"}, env.plaintext)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeData(t, resp)
	id := created["id"].(string)

	// a key from a different org cannot see it
	_, otherKey, err := env.keySvc.Create(context.Background(), uuid.New(), uuid.New(), "other-org")
	require.NoError(t, err)

	resp = env.do(t, http.MethodGet, "/issues/"+id, nil, otherKey)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestReadOnlyCreatorCannotMutate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	viewerID := uuid.New()
	env.roles.mu.Lock()
	env.roles.readOnly[viewerID] = true
	env.roles.mu.Unlock()

	_, viewerKey, err := env.keySvc.Create(context.Background(), env.orgID, viewerID, "viewer-client")
	require.NoError(t, err)

	// reads still work
	resp := env.do(t, http.MethodGet, "/issues", nil, viewerKey)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/issues", map[string]string{"title": "nope"}, viewerKey)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestInvalidStatusRejected(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/issues", map[string]string{"title": "x"}, env.plaintext)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeData(t, resp)

	resp = env.do(t, http.MethodPatch, "/issues/"+created["id"].(string), map[string]string{
		"status": "wontfix",
	}, env.plaintext)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
