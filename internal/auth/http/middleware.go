package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/session"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

type userCtxKey struct{}

// WithUser stores the resolved user on ctx.
func WithUser(ctx context.Context, u domain.PublicUser) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext returns the resolved user, or nil when the request is
// anonymous.
func UserFromContext(ctx context.Context) *domain.PublicUser {
	u, ok := ctx.Value(userCtxKey{}).(domain.PublicUser)
	if !ok {
		return nil
	}
	return &u
}

// credentials gathers the identity proofs carried by r. The token cookie
// wins over the bearer header.
func credentials(r *http.Request) service.Credentials {
	var creds service.Credentials

	if h := session.FromContext(r.Context()); h != nil {
		creds.Session = h
	}

	creds.Token = httpx.CookieValue(r, TokenCookieName)
	if creds.Token == "" {
		creds.Token = httpx.BearerToken(r)
	}
	return creds
}

func withResolved(r *http.Request, u domain.PublicUser) *http.Request {
	ctx := WithUser(r.Context(), u)
	ctx = httpx.WithUserID(ctx, u.ID)
	ctx = slogx.With(ctx, "user_id", u.ID)
	return r.WithContext(ctx)
}

// Authenticate rejects requests whose identity cannot be resolved.
func Authenticate(resolver *service.IdentityResolver, rs responder) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := resolver.Resolve(r.Context(), credentials(r))
			if err != nil {
				rs.writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, withResolved(r, u))
		})
	}
}

// OptionalAuthenticate resolves identity when it can and otherwise lets
// the request through anonymously.
func OptionalAuthenticate(resolver *service.IdentityResolver) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := resolver.Resolve(r.Context(), credentials(r))
			if err != nil {
				slogx.FromContext(r.Context()).Debug("optional authentication skipped", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, withResolved(r, u))
		})
	}
}

// RequireAnyRole admits users holding one of roles. It must run after
// Authenticate.
func RequireAnyRole(rs responder, roles ...domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := service.Authorize(UserFromContext(r.Context()), roles...); err != nil {
				rs.writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
