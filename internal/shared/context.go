package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession attaches the request's session to ctx. The session
// middleware calls this once per request.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the session attached to ctx, or nil when the
// request never went through the session middleware.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
