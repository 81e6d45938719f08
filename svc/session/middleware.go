package session

import (
	"net/http"

	"github.com/dmitrymomot/launchkit/pkg/httpx"
)

// RequireUser resolves the session and stores it in the request context.
// Requests without a valid session are redirected to login with the
// original URL preserved in redirectTo.
func (m *Manager) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Load(r.Context(), r)
		if err != nil {
			httpx.RedirectToLogin(w, r, m.cfg.LoginPath)
			return
		}
		next.ServeHTTP(w, r.WithContext(SetToContext(r.Context(), s)))
	})
}

// RequireVerified enforces the unverified-email gate: email-method sessions
// without a verified identity are sent to the verification flow. Must run
// after RequireUser.
func (m *Manager) RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := FromContext(r.Context())
		if !ok {
			httpx.RedirectToLogin(w, r, m.cfg.LoginPath)
			return
		}
		if s.NeedsVerification() {
			http.Redirect(w, r, m.cfg.VerifyPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
