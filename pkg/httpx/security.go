package httpx

import (
	"net/http"
	"strings"
)

// SecurityHeaders sets conservative browser security headers on every
// response. hsts adds Strict-Transport-Security and should only be enabled
// when the service is reached over TLS.
func SecurityHeaders(hsts bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			if hsts {
				h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSConfig controls cross-origin access.
type CORSConfig struct {
	// AllowedOrigins lists exact origins; "*" allows any. Empty disables CORS.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	// AllowCredentials lets browsers send cookies cross-origin. With "*" the
	// request origin is echoed back instead of the wildcard.
	AllowCredentials bool
}

// CORS answers preflight requests and decorates responses for allowed
// origins. Requests from other origins pass through without CORS headers.
func CORS(cfg CORSConfig) Middleware {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	allowed := func(origin string) (string, bool) {
		for _, o := range cfg.AllowedOrigins {
			if o == "*" {
				if cfg.AllowCredentials {
					return origin, true
				}
				return "*", true
			}
			if strings.EqualFold(o, origin) {
				return origin, true
			}
		}
		return "", false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || len(cfg.AllowedOrigins) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			value, ok := allowed(origin)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", value)
			h.Add("Vary", "Origin")
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
