package settings

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/launchkit/pkg/httpx"
	"github.com/dmitrymomot/launchkit/pkg/validator"
	"github.com/dmitrymomot/launchkit/svc/apikey"
	"github.com/dmitrymomot/launchkit/svc/auth"
	"github.com/dmitrymomot/launchkit/svc/rbac"
	"github.com/dmitrymomot/launchkit/svc/session"
	"github.com/dmitrymomot/launchkit/svc/tenant"
)

// Handler serves the authenticated settings routes.
type Handler struct {
	auth     *auth.Service
	tenants  *tenant.Service
	perms    *rbac.Service
	keys     *apikey.Service
	users    auth.UserStore
	sessions *session.Manager
	log      *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) { h.log = log }
}

// NewHandler wires the settings module.
func NewHandler(
	authSvc *auth.Service,
	tenants *tenant.Service,
	perms *rbac.Service,
	keys *apikey.Service,
	users auth.UserStore,
	sessions *session.Manager,
	opts ...Option,
) *Handler {
	h := &Handler{
		auth:     authSvc,
		tenants:  tenants,
		perms:    perms,
		keys:     keys,
		users:    users,
		sessions: sessions,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle returns the module's router, intended to be mounted under
// /settings. RequireVerified keeps unconfirmed email accounts out.
func (h *Handler) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(h.sessions.RequireUser, h.sessions.RequireVerified)

	r.Post("/password", h.changePassword)
	r.Get("/auth-methods", h.authMethods)

	r.Get("/organizations", h.listOrganizations)
	r.Post("/organizations", h.createOrganization)
	r.Post("/organizations/switch", h.switchOrganization)
	r.Post("/onboarding", h.startOnboarding)

	r.Get("/members", h.listMembers)
	r.Post("/members/role", h.changeMemberRole)

	r.Get("/api-keys", h.listAPIKeys)
	r.Post("/api-keys", h.createAPIKey)
	r.Delete("/api-keys/{id}", h.revokeAPIKey)

	r.Post("/avatar", h.uploadAvatar)
	r.Get("/avatar", h.avatarURL)

	return r
}

// defaultOrg resolves the caller's default organization, the scope every
// workspace route operates in.
func (h *Handler) defaultOrg(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		return uuid.Nil, uuid.Nil, httpx.NewHTTPError(http.StatusUnauthorized, "no_session")
	}
	user, err := h.users.FindUserByID(r.Context(), sess.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if user.DefaultOrgID == uuid.Nil {
		return uuid.Nil, uuid.Nil, httpx.NewHTTPError(http.StatusConflict, "no_default_organization")
	}
	return sess.UserID, user.DefaultOrgID, nil
}

// requireWrite turns a negative permission answer into a 403 before the
// handler body runs.
func (h *Handler) requireWrite(r *http.Request, userID uuid.UUID, entity rbac.Entity) error {
	allowed, err := h.perms.CanWrite(r.Context(), userID, entity)
	if err != nil {
		return err
	}
	if !allowed {
		return httpx.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return nil
}

func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tenant.ErrNotAMember):
		err = httpx.NewHTTPError(http.StatusForbidden, "not_a_member")
	case errors.Is(err, tenant.ErrUnknownRole):
		err = httpx.NewHTTPError(http.StatusBadRequest, "unknown_role")
	case errors.Is(err, tenant.ErrLastAdmin):
		err = httpx.NewHTTPError(http.StatusConflict, "last_admin")
	case errors.Is(err, tenant.ErrOrgNotFound):
		err = httpx.NewHTTPError(http.StatusNotFound, "organization_not_found")
	case errors.Is(err, apikey.ErrKeyNotFound):
		err = httpx.NewHTTPError(http.StatusNotFound, "api_key_not_found")
	case errors.Is(err, auth.ErrNoPasswordLogin):
		err = httpx.NewHTTPError(http.StatusConflict, "no_password_login")
	default:
		if !isClientFault(err) {
			h.log.ErrorContext(r.Context(), "settings request failed",
				slog.String("path", r.URL.Path),
				slog.Any("error", err),
			)
		}
	}
	httpx.Error(w, err)
}

func isClientFault(err error) bool {
	var httpErr httpx.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code < http.StatusInternalServerError
	}
	var vErrs validator.ValidationErrors
	return errors.As(err, &vErrs)
}
