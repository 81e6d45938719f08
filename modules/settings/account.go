package settings

import (
	"io"
	"net/http"

	"github.com/dmitrymomot/launchkit/pkg/httpx"
	"github.com/dmitrymomot/launchkit/svc/session"
)

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	var req changePasswordRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	if err := h.auth.ChangePassword(r.Context(), sess.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.NoContent(w)
}

type authMethodsResponse struct {
	HasPassword bool     `json:"has_password"`
	Providers   []string `json:"providers"`
}

func (h *Handler) authMethods(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	methods, err := h.auth.Methods(r.Context(), sess.UserID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, authMethodsResponse{
		HasPassword: methods.HasPassword,
		Providers:   methods.Providers,
	})
}

// maxAvatarUpload bounds the multipart read; the blob layer enforces its
// own limit again.
const maxAvatarUpload = 5 << 20

func (h *Handler) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	if err := r.ParseMultipartForm(maxAvatarUpload); err != nil {
		httpx.Error(w, httpx.NewHTTPError(http.StatusBadRequest, "invalid_multipart_body"))
		return
	}
	file, _, err := r.FormFile("avatar")
	if err != nil {
		httpx.Error(w, httpx.NewHTTPError(http.StatusBadRequest, "missing_avatar_file"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxAvatarUpload))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	path, err := h.auth.UpdateAvatar(r.Context(), sess.UserID, content)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"path": path})
}

func (h *Handler) avatarURL(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	url, err := h.auth.AvatarURL(r.Context(), sess.UserID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"url": url})
}
