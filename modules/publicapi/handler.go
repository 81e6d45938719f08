package publicapi

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
	"github.com/dmitrymomot/launchkit/svc/issue"
	"github.com/dmitrymomot/launchkit/svc/rbac"
)

// Handler serves the public API routes.
type Handler struct {
	keys   *apikey.Service
	perms  *rbac.Service
	issues *issue.Service
	log    *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) { h.log = log }
}

// NewHandler wires the public API module.
func NewHandler(keys *apikey.Service, perms *rbac.Service, issues *issue.Service, opts ...Option) *Handler {
	h := &Handler{
		keys:   keys,
		perms:  perms,
		issues: issues,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle returns the module's router, intended to be mounted under /api/v1.
func (h *Handler) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(h.keys.RequireAPIKey)

	r.Get("/issues", h.listIssues)
	r.Post("/issues", h.createIssue)
	r.Get("/issues/{id}", h.getIssue)
	r.Patch("/issues/{id}", h.updateIssue)
	r.Delete("/issues/{id}", h.deleteIssue)

	return r
}

type issueResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toIssueResponse(i issue.Issue) issueResponse {
	return issueResponse{
		ID:          i.ID.String(),
		Title:       i.Title,
		Description: i.Description,
		Status:      string(i.Status),
		CreatedAt:   i.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   i.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// requestScope pulls the resolved API key and the path id.
func requestScope(r *http.Request) (apikey.APIKey, uuid.UUID, error) {
	key, ok := apikey.KeyFromContext(r.Context())
	if !ok {
		return apikey.APIKey{}, uuid.Nil, httpx.NewHTTPError(http.StatusUnauthorized, "invalid_api_key")
	}
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return key, uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return key, uuid.Nil, httpx.NewHTTPError(http.StatusBadRequest, "invalid_issue_id")
	}
	return key, id, nil
}

// requireIssueWrite gates mutations on the key creator's role inside the
// key's organization. A creator who lost their membership takes their keys'
// write access with them.
func (h *Handler) requireIssueWrite(r *http.Request, key apikey.APIKey) error {
	ok, err := h.perms.CanWriteIn(r.Context(), key.OrgID, key.CreatedBy, rbac.EntityIssues)
	if errors.Is(err, rbac.ErrRoleNotFound) {
		return httpx.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if err != nil {
		return err
	}
	if !ok {
		return httpx.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return nil
}

func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, issue.ErrIssueNotFound):
		err = httpx.NewHTTPError(http.StatusNotFound, "issue_not_found")
	case errors.Is(err, issue.ErrInvalidStatus):
		err = httpx.NewHTTPError(http.StatusBadRequest, "invalid_status")
	default:
		var httpErr httpx.HTTPError
		var vErrs validator.ValidationErrors
		if !errors.As(err, &httpErr) && !errors.As(err, &vErrs) {
			h.log.ErrorContext(r.Context(), "public api request failed",
				slog.String("path", r.URL.Path),
				slog.Any("error", err),
			)
		}
	}
	httpx.Error(w, err)
}
