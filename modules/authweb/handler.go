package authweb

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/launchkit/pkg/cookie"
	"github.com/dmitrymomot/launchkit/pkg/httpx"
	"github.com/dmitrymomot/launchkit/pkg/validator"
	"github.com/dmitrymomot/launchkit/svc/auth"
	"github.com/dmitrymomot/launchkit/svc/session"
)

// Config tunes the module's HTTP behavior.
type Config struct {
	// DefaultRedirect is where completed OAuth logins land.
	DefaultRedirect string `env:"AUTH_DEFAULT_REDIRECT" envDefault:"/"`
	// SecureCookies must be true everywhere except local development.
	SecureCookies bool `env:"AUTH_SECURE_COOKIES" envDefault:"true"`
}

// Handler serves the authentication routes.
type Handler struct {
	auth     *auth.Service
	sessions *session.Manager
	cookies  *cookie.Manager
	cfg      Config
	log      *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) { h.log = log }
}

// NewHandler wires the authentication module.
func NewHandler(authSvc *auth.Service, sessions *session.Manager, cookies *cookie.Manager, cfg Config, opts ...Option) *Handler {
	h := &Handler{
		auth:     authSvc,
		sessions: sessions,
		cookies:  cookies,
		cfg:      cfg,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle returns the module's router, intended to be mounted under /auth.
func (h *Handler) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Post("/forgot-password", h.forgotPassword)
	r.Post("/reset-password", h.resetPassword)

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.RequireUser)
		r.Post("/verify-email", h.verifyEmail)
		r.Post("/verification/resend", h.resendVerification)
	})

	r.Get("/{provider}", h.oauthStart)
	r.Get("/{provider}/callback", h.oauthCallback)
	r.With(h.sessions.RequireUser).Post("/{provider}/disconnect", h.oauthDisconnect)

	return r
}

// userResponse is the public shape of an account.
type userResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Onboarding string `json:"onboarding"`
	Verified   bool   `json:"verified"`
}

func toUserResponse(u auth.User, verified bool) userResponse {
	return userResponse{
		ID:         u.ID.String(),
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Onboarding: string(u.Onboarding),
		Verified:   verified,
	}
}

// respondErr maps domain sentinels to HTTP semantics before handing off to
// the shared classifier. Unmapped errors fall through as opaque 500s.
func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		err = httpx.NewHTTPError(http.StatusConflict, "email_taken")
	case errors.Is(err, auth.ErrInvalidCredentials):
		err = httpx.NewHTTPError(http.StatusUnauthorized, "invalid_credentials")
	case errors.Is(err, auth.ErrInvalidCode):
		err = httpx.NewHTTPError(http.StatusBadRequest, "invalid_code")
	case errors.Is(err, auth.ErrInvalidResetLink):
		err = httpx.NewHTTPError(http.StatusBadRequest, "invalid_reset_link")
	case errors.Is(err, auth.ErrAlreadyVerified):
		err = httpx.NewHTTPError(http.StatusConflict, "already_verified")
	case errors.Is(err, auth.ErrLastAuthMethod):
		err = httpx.NewHTTPError(http.StatusConflict, "last_auth_method")
	case errors.Is(err, auth.ErrNotLinked):
		err = httpx.NewHTTPError(http.StatusNotFound, "provider_not_linked")
	case errors.Is(err, auth.ErrUnknownProvider):
		err = httpx.NewHTTPError(http.StatusNotFound, "unknown_provider")
	case errors.Is(err, auth.ErrInvalidOAuth), errors.Is(err, auth.ErrNoPrimaryEmail):
		err = httpx.NewHTTPError(http.StatusBadGateway, "oauth_failed")
	default:
		if !isClientFault(err) {
			h.log.ErrorContext(r.Context(), "auth request failed",
				slog.String("path", r.URL.Path),
				slog.Any("error", err),
			)
		}
	}
	httpx.Error(w, err)
}

// isClientFault reports whether the classifier will blame the client,
// meaning the error is expected traffic rather than something to alert on.
func isClientFault(err error) bool {
	var httpErr httpx.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code < http.StatusInternalServerError
	}
	var vErrs validator.ValidationErrors
	var retryErr httpx.RetryAfterError
	return errors.As(err, &vErrs) || errors.As(err, &retryErr)
}
