package auth

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the hydrated Session in context.
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext returns the Session attached by Hydrate, or nil.
func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionContextKey{}).(*Session)
	return s
}

// UserFromContext returns the signed-in user, or nil.
func UserFromContext(ctx context.Context) *User {
	if s := SessionFromContext(ctx); s != nil {
		return s.CurrentUser()
	}
	return nil
}
