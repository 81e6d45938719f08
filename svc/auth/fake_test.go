package auth_test

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/launchkit/pkg/mailer"
	"github.com/dmitrymomot/launchkit/svc/auth"
)

// memStorage is an in-memory auth.Storage with the same not-found sentinels
// the postgres implementation returns.
type memStorage struct {
	mu          sync.Mutex
	users       map[uuid.UUID]auth.User
	credentials map[uuid.UUID]auth.Credential
	identities  []auth.Identity
	tokens      map[string]auth.VerificationToken // keyed by userID|type
}

func newMemStorage() *memStorage {
	return &memStorage{
		users:       make(map[uuid.UUID]auth.User),
		credentials: make(map[uuid.UUID]auth.Credential),
		tokens:      make(map[string]auth.VerificationToken),
	}
}

func tokenKey(userID uuid.UUID, typ auth.TokenType) string {
	return userID.String() + "|" + string(typ)
}

func (m *memStorage) FindUserByEmail(ctx context.Context, email string) (auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return auth.User{}, auth.ErrUserNotFound
}

func (m *memStorage) FindUserByID(ctx context.Context, id uuid.UUID) (auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return u, nil
}

func (m *memStorage) CreateUser(ctx context.Context, u auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *memStorage) UpdateUserAvatar(ctx context.Context, userID uuid.UUID, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.AvatarPath = path
	m.users[userID] = u
	return nil
}

func (m *memStorage) FindCredential(ctx context.Context, userID uuid.UUID) (auth.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.credentials[userID]
	if !ok {
		return auth.Credential{}, auth.ErrNoPasswordLogin
	}
	return c, nil
}

func (m *memStorage) CreateCredential(ctx context.Context, c auth.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credentials[c.UserID] = c
	return nil
}

func (m *memStorage) UpdateCredentialPassword(ctx context.Context, userID uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.credentials[userID]
	if !ok {
		return auth.ErrNoPasswordLogin
	}
	c.PasswordHash = hash
	m.credentials[userID] = c
	return nil
}

func (m *memStorage) MarkCredentialVerified(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.credentials[userID]
	if !ok {
		return auth.ErrNoPasswordLogin
	}
	now := timeNow()
	c.VerifiedAt = &now
	m.credentials[userID] = c
	return nil
}

func (m *memStorage) FindIdentity(ctx context.Context, provider, providerUserID string) (auth.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.identities {
		if i.Provider == provider && i.ProviderUserID == providerUserID {
			return i, nil
		}
	}
	return auth.Identity{}, auth.ErrNotLinked
}

func (m *memStorage) FindUserIdentities(ctx context.Context, userID uuid.UUID) ([]auth.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []auth.Identity
	for _, i := range m.identities {
		if i.UserID == userID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *memStorage) CreateIdentity(ctx context.Context, i auth.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities = append(m.identities, i)
	return nil
}

func (m *memStorage) DeleteIdentity(ctx context.Context, userID uuid.UUID, provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for n, i := range m.identities {
		if i.UserID == userID && i.Provider == provider {
			m.identities = append(m.identities[:n], m.identities[n+1:]...)
			return nil
		}
	}
	return auth.ErrNotLinked
}

func (m *memStorage) CreateUserWithIdentity(ctx context.Context, u auth.User, i auth.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.identities = append(m.identities, i)
	return nil
}

func (m *memStorage) UpsertToken(ctx context.Context, t auth.VerificationToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := tokenKey(t.UserID, t.Type)
	if prev, ok := m.tokens[key]; ok {
		t.ID = prev.ID
		t.CreatedAt = prev.CreatedAt
	}
	m.tokens[key] = t
	return nil
}

func (m *memStorage) FindToken(ctx context.Context, userID uuid.UUID, typ auth.TokenType) (auth.VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[tokenKey(userID, typ)]
	if !ok {
		return auth.VerificationToken{}, auth.ErrInvalidCode
	}
	return t, nil
}

func (m *memStorage) FindTokenByCode(ctx context.Context, code string, typ auth.TokenType) (auth.VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.Type == typ && t.Code == code {
			return t, nil
		}
	}
	return auth.VerificationToken{}, auth.ErrInvalidResetLink
}

func (m *memStorage) MarkTokenVerified(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, t := range m.tokens {
		if t.ID == id {
			t.Verified = true
			m.tokens[key] = t
			return nil
		}
	}
	return auth.ErrInvalidCode
}

func (m *memStorage) DeleteToken(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, t := range m.tokens {
		if t.ID == id {
			delete(m.tokens, key)
			return nil
		}
	}
	return auth.ErrInvalidResetLink
}

// capturingSender records every email instead of delivering it.
type capturingSender struct {
	mu   sync.Mutex
	sent []mailer.SendEmailParams
}

func (c *capturingSender) SendEmail(ctx context.Context, params mailer.SendEmailParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, params)
	return nil
}

func (c *capturingSender) byTag(tag string) []mailer.SendEmailParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []mailer.SendEmailParams
	for _, p := range c.sent {
		if p.Tag == tag {
			out = append(out, p)
		}
	}
	return out
}

// fakeAdapter resolves every code to a fixed profile.
type fakeAdapter struct {
	id      string
	profile auth.ProviderProfile
	fail    bool
}

func (f *fakeAdapter) ProviderID() string          { return f.id }
func (f *fakeAdapter) AuthURL(state string) string { return "https://provider.test/auth?state=" + state }

func (f *fakeAdapter) ResolveProfile(ctx context.Context, code string) (auth.ProviderProfile, error) {
	if f.fail {
		return auth.ProviderProfile{}, auth.ErrInvalidOAuth
	}
	return f.profile, nil
}
