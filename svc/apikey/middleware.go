package apikey

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/launchkit/pkg/httpx"
)

// HeaderName is where public API clients present their key.
const HeaderName = "X-API-Key"

type keyContextKey struct{}

// KeyFromContext returns the API key resolved by RequireAPIKey.
func KeyFromContext(ctx context.Context) (APIKey, bool) {
	k, ok := ctx.Value(keyContextKey{}).(APIKey)
	return k, ok
}

// OrgFromContext returns the organization resolved by RequireAPIKey.
func OrgFromContext(ctx context.Context) (uuid.UUID, bool) {
	k, ok := KeyFromContext(ctx)
	return k.OrgID, ok
}

// RequireAPIKey authenticates public API requests. The resolved key is
// stored in the request context; missing or unknown keys get a 401 JSON
// response.
func (s *Service) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := s.Resolve(r.Context(), r.Header.Get(HeaderName))
		if err != nil {
			httpx.Error(w, httpx.NewHTTPError(http.StatusUnauthorized, "invalid_api_key"))
			return
		}
		ctx := context.WithValue(r.Context(), keyContextKey{}, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
