package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/launchkit/pkg/validator"
)

// HTTPError pairs a status code with a stable machine-readable key.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Key)
}

// NewHTTPError creates an HTTPError with the given status and key.
func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}

// RetryAfterError marks errors caused by rate limits or cooldowns; the
// classification layer turns it into a 429 with a Retry-After header.
type RetryAfterError interface {
	error
	RetryAfter() time.Duration
}

// Error classifies err and writes the matching JSON error response.
//
// Classification order: validation errors become a 400 with per-field
// details, cooldown errors become 429 with Retry-After, HTTPError carries
// its own code, and everything else is a generic 500 that does not leak
// internals to the client.
func Error(w http.ResponseWriter, err error) {
	detail, status, retryAfter := classify(err)
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	}
	JSON(w, status, JSONResponse{Error: detail})
}

func classify(err error) (*ErrorDetail, int, time.Duration) {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		return &ErrorDetail{
			Code:    "validation_error",
			Message: "The submitted data is invalid.",
			Details: vErrs.FieldMap(),
		}, http.StatusBadRequest, 0
	}

	var retryErr RetryAfterError
	if errors.As(err, &retryErr) {
		return &ErrorDetail{
			Code:    "too_many_requests",
			Message: "Please wait before trying again.",
		}, http.StatusTooManyRequests, retryErr.RetryAfter()
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return &ErrorDetail{
			Code:    httpErr.Key,
			Message: http.StatusText(httpErr.Code),
		}, httpErr.Code, 0
	}

	return &ErrorDetail{
		Code:    "internal_error",
		Message: "Something went wrong. Please try again later.",
	}, http.StatusInternalServerError, 0
}
