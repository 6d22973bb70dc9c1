package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
)

// TokenCookieName carries the JWT for browser clients.
const TokenCookieName = "token"

func tokenCookie(tok domain.IssuedToken, secure bool) *http.Cookie {
	maxAge := int(time.Until(tok.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     TokenCookieName,
		Value:    tok.Value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  tok.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func clearTokenCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
