package session

import "context"

type sessionContextKey struct{}

// SetToContext stores the resolved session for downstream handlers.
func SetToContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// FromContext retrieves the session placed by RequireUser.
// The second return is false when no middleware ran.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(Session)
	return s, ok
}
