package publicapi

import (
	"net/http"

	"github.com/dmitrymomot/launchkit/pkg/httpx"
	"github.com/dmitrymomot/launchkit/svc/issue"
)

func (h *Handler) listIssues(w http.ResponseWriter, r *http.Request) {
	key, _, err := requestScope(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	issues, err := h.issues.List(r.Context(), key.OrgID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	out := make([]issueResponse, 0, len(issues))
	for _, i := range issues {
		out = append(out, toIssueResponse(i))
	}
	httpx.JSON(w, http.StatusOK, out)
}

type createIssueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *Handler) createIssue(w http.ResponseWriter, r *http.Request) {
	key, _, err := requestScope(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if err := h.requireIssueWrite(r, key); err != nil {
		h.respondErr(w, r, err)
		return
	}

	var req createIssueRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	// API-created issues are attributed to whoever issued the key.
	created, err := h.issues.Create(r.Context(), key.OrgID, key.CreatedBy, req.Title, req.Description)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toIssueResponse(created))
}

func (h *Handler) getIssue(w http.ResponseWriter, r *http.Request) {
	key, id, err := requestScope(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	i, err := h.issues.Get(r.Context(), key.OrgID, id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toIssueResponse(i))
}

type updateIssueRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (h *Handler) updateIssue(w http.ResponseWriter, r *http.Request) {
	key, id, err := requestScope(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if err := h.requireIssueWrite(r, key); err != nil {
		h.respondErr(w, r, err)
		return
	}

	var req updateIssueRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	params := issue.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status, err := issue.ParseStatus(*req.Status)
		if err != nil {
			h.respondErr(w, r, err)
			return
		}
		params.Status = &status
	}

	updated, err := h.issues.Update(r.Context(), key.OrgID, id, params)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toIssueResponse(updated))
}

func (h *Handler) deleteIssue(w http.ResponseWriter, r *http.Request) {
	key, id, err := requestScope(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if err := h.requireIssueWrite(r, key); err != nil {
		h.respondErr(w, r, err)
		return
	}

	if err := h.issues.Delete(r.Context(), key.OrgID, id); err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.NoContent(w)
}
