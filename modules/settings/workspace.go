package settings

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/launchkit/pkg/httpx"
	"github.com/dmitrymomot/launchkit/svc/rbac"
	"github.com/dmitrymomot/launchkit/svc/session"
	"github.com/dmitrymomot/launchkit/svc/tenant"
)

type organizationResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toOrganizationResponse(o tenant.Organization) organizationResponse {
	return organizationResponse{ID: o.ID.String(), Name: o.Name}
}

func (h *Handler) listOrganizations(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	orgs, err := h.tenants.Organizations(r.Context(), sess.UserID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	out := make([]organizationResponse, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, toOrganizationResponse(o))
	}
	httpx.JSON(w, http.StatusOK, out)
}

type createOrganizationRequest struct {
	Name string `json:"name"`
}

func (h *Handler) createOrganization(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	var req createOrganizationRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	org, err := h.tenants.CreateOrganization(r.Context(), sess.UserID, req.Name)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toOrganizationResponse(org))
}

type switchOrganizationRequest struct {
	OrgID uuid.UUID `json:"org_id"`
}

func (h *Handler) switchOrganization(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	var req switchOrganizationRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	if err := h.tenants.SwitchDefaultOrganization(r.Context(), sess.UserID, req.OrgID); err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) startOnboarding(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	if err := h.tenants.StartOnboarding(r.Context(), sess.UserID); err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.NoContent(w)
}

type memberResponse struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	RoleID string `json:"role_id"`
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	_, orgID, err := h.defaultOrg(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	members, err := h.tenants.Members(r.Context(), orgID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse{
			ID:     m.ID.String(),
			UserID: m.UserID.String(),
			RoleID: m.RoleID.String(),
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

type changeMemberRoleRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

func (h *Handler) changeMemberRole(w http.ResponseWriter, r *http.Request) {
	userID, orgID, err := h.defaultOrg(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if err := h.requireWrite(r, userID, rbac.EntityMembers); err != nil {
		h.respondErr(w, r, err)
		return
	}

	var req changeMemberRoleRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	if err := h.tenants.ChangeMemberRole(r.Context(), orgID, req.UserID, req.Role); err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.NoContent(w)
}
