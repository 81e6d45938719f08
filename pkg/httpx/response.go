package httpx

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// JSONResponse is the standard JSON envelope.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail carries a machine-readable code, a human message, and
// optional per-field details for validation failures.
type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

// JSON writes v inside the standard envelope with the given status.
// Encoding failures after the header is written can only be logged by
// middleware, so the error is swallowed here.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	body, ok := v.(JSONResponse)
	if !ok {
		body = JSONResponse{Data: v}
	}
	_ = json.NewEncoder(w).Encode(body)
}

// NoContent writes a 204 with an empty body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Decode reads a JSON request body into dst, rejecting unknown fields so
// client typos surface as errors instead of silently dropped input.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid_request_body")
	}
	return nil
}

// Redirect issues a 303 so a POST handler lands the browser on a GET.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// RedirectToLogin sends the browser to the login page with the original
// URL preserved in redirectTo, so login can resume the interrupted request.
func RedirectToLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	target := loginPath + "?redirectTo=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusFound)
}

// SafeRedirectTarget validates a client-supplied redirectTo value. Only
// same-origin absolute paths are allowed; anything else falls back to
// fallback to prevent open redirects.
func SafeRedirectTarget(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || !startsWithSlash(u.Path) {
		return fallback
	}
	return u.RequestURI()
}

func startsWithSlash(p string) bool {
	return len(p) > 0 && p[0] == '/' && (len(p) == 1 || p[1] != '/')
}
