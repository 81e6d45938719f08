package authweb

import (
	"net/http"

	"github.com/dmitrymomot/launchkit/pkg/httpx"
	"github.com/dmitrymomot/launchkit/svc/session"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	// Fresh password registrations always start unverified.
	if _, err := h.sessions.Start(r.Context(), w, user.ID, session.AuthMethodEmail, "", false); err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toUserResponse(user, false))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	user, verified, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	if _, err := h.sessions.Start(r.Context(), w, user.ID, session.AuthMethodEmail, "", verified); err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(user, verified))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.NoContent(w)
}

type verifyEmailRequest struct {
	Code string `json:"code"`
}

func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	var req verifyEmailRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	if err := h.auth.VerifyEmail(r.Context(), sess.UserID, req.Code); err != nil {
		h.respondErr(w, r, err)
		return
	}

	// The stored session still says unverified; rotate it so the gate lifts
	// immediately instead of on next login.
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.respondErr(w, r, err)
		return
	}
	if _, err := h.sessions.Start(r.Context(), w, sess.UserID, session.AuthMethodEmail, "", true); err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) resendVerification(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	if err := h.auth.ResendVerification(r.Context(), sess.UserID); err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.NoContent(w)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	// Unknown emails succeed silently; the response never reveals whether
	// an account exists.
	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

type resetPasswordRequest struct {
	Code     string `json:"code"`
	Password string `json:"password"`
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Code, req.Password); err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.NoContent(w)
}
