package settings

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/launchkit/pkg/httpx"
	"github.com/dmitrymomot/launchkit/svc/apikey"
	"github.com/dmitrymomot/launchkit/svc/rbac"
)

type apiKeyResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastFour string `json:"last_four"`
	// Key carries the plaintext exactly once, in the create response.
	Key string `json:"key,omitempty"`
}

func toAPIKeyResponse(k apikey.APIKey, plaintext string) apiKeyResponse {
	return apiKeyResponse{
		ID:       k.ID.String(),
		Name:     k.Name,
		LastFour: k.LastFour,
		Key:      plaintext,
	}
}

func (h *Handler) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	_, orgID, err := h.defaultOrg(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	keys, err := h.keys.List(r.Context(), orgID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	out := make([]apiKeyResponse, 0, len(keys))
	for _, k := range keys {
		out = append(out, toAPIKeyResponse(k, ""))
	}
	httpx.JSON(w, http.StatusOK, out)
}

type createAPIKeyRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createAPIKey(w http.ResponseWriter, r *http.Request) {
	userID, orgID, err := h.defaultOrg(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if err := h.requireWrite(r, userID, rbac.EntitySettings); err != nil {
		h.respondErr(w, r, err)
		return
	}

	var req createAPIKeyRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	key, plaintext, err := h.keys.Create(r.Context(), orgID, userID, req.Name)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAPIKeyResponse(key, plaintext))
}

func (h *Handler) revokeAPIKey(w http.ResponseWriter, r *http.Request) {
	userID, orgID, err := h.defaultOrg(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if err := h.requireWrite(r, userID, rbac.EntitySettings); err != nil {
		h.respondErr(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, httpx.NewHTTPError(http.StatusBadRequest, "invalid_key_id"))
		return
	}

	if err := h.keys.Revoke(r.Context(), orgID, id); err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.NoContent(w)
}
