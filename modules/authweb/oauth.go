package authweb

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/launchkit/pkg/cookie"
	"github.com/dmitrymomot/launchkit/pkg/httpx"
	"github.com/dmitrymomot/launchkit/pkg/keygen"
	"github.com/dmitrymomot/launchkit/svc/session"
)

// stateCookie holds the CSRF state between the redirect to the provider
// and the callback. Ten minutes is plenty for a consent screen.
const (
	stateCookie    = "oauth_state"
	stateCookieTTL = 600
)

func (h *Handler) oauthStart(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	state, err := keygen.SessionToken()
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	target, err := h.auth.AuthURL(provider, state)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	h.cookies.SetSigned(w, stateCookie, state,
		cookie.WithMaxAge(stateCookieTTL),
		cookie.WithSecure(h.cfg.SecureCookies),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
	)
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) oauthCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	state, err := h.cookies.GetSigned(r, stateCookie)
	h.cookies.Delete(w, stateCookie)
	if err != nil || state == "" || state != r.URL.Query().Get("state") {
		httpx.Error(w, httpx.NewHTTPError(http.StatusBadRequest, "invalid_oauth_state"))
		return
	}

	user, err := h.auth.HandleCallback(r.Context(), provider, r.URL.Query().Get("code"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	// The provider vouched for the email; oauth sessions skip the
	// verification gate.
	if _, err := h.sessions.Start(r.Context(), w, user.ID, session.AuthMethodOAuth, provider, true); err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.Redirect(w, r, h.cfg.DefaultRedirect)
}

func (h *Handler) oauthDisconnect(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	sess, _ := session.FromContext(r.Context())

	if err := h.auth.Disconnect(r.Context(), sess.UserID, provider); err != nil {
		h.respondErr(w, r, err)
		return
	}

	// Sessions that came in through the disconnected provider are no longer
	// backed by a login method; revoke them all. The current cookie only
	// goes when this session is one of them.
	clearCookie := sess.AuthMethod == session.AuthMethodOAuth && sess.Provider == provider
	if err := h.sessions.DestroyProviderSessions(r.Context(), w, sess.UserID, provider, clearCookie); err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.NoContent(w)
}
