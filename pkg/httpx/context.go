package httpx

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
)

// WithUserID records the authenticated user id for downstream middleware
// such as per-user rate limiting.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, userID)
}

// UserIDFromContext returns the id stored by WithUserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CtxKeyUserID).(string)
	return id, ok && id != ""
}

// BearerToken returns the token from an "Authorization: Bearer" header, or
// "" when there is none.
func BearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[len("Bearer "):])
}

// CookieValue returns the named cookie's value or "".
func CookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
