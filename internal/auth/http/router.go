package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/metrics"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/session"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"

	_ "github.com/aussiebroadwan/gatekeeper/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Options holds the transport settings that come from configuration.
type Options struct {
	BuildVersion string
	// Production enables Secure cookies, HSTS and sanitised 5xx bodies.
	Production bool
	// CORSOrigins lists allowed browser origins. Empty disables CORS.
	CORSOrigins []string
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	production   bool
	responder    responder

	store    store.Store
	sessions *session.Manager
	metrics  *metrics.Metrics

	AuthService *service.AuthService
	Resolver    *service.IdentityResolver
}

func NewRouter(
	st store.Store,
	sessions *session.Manager,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts Options,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: opts.BuildVersion,
		startTime:    time.Now(),
		logger:       logger,
		production:   opts.Production,
		responder:    responder{Production: opts.Production},
		store:        st,
		sessions:     sessions,
		metrics:      m,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.SecurityHeaders(opts.Production),
		httpx.CORS(httpx.CORSConfig{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
		}),
		r.sessions.Middleware,
	}
	if r.metrics != nil {
		// Innermost so the matched pattern is visible after dispatch.
		r.middlewares = append(r.middlewares, r.metrics.Middleware)
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
	r.Mux.HandleFunc("/", r.responder.notFound)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Gatekeeper Authentication Service API
//	@version		0.1.0
//	@description	Email and password authentication with HS256 JWTs and server-side sessions.
//	@description
//	@description				A request is authenticated by its session cookie or, failing that, by the token cookie or a bearer token.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/gatekeeper
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT issued by register or login. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService: r.AuthService,
		Secure:      r.production,
		responder:   r.responder,
	}
	authn := Authenticate(r.Resolver, r.responder)

	// One bucket per (client IP, email) pair: repeated guesses against one
	// account from one client are throttled. Other pairs are unaffected.
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			authn,
			RequireAnyRole(r.responder, domain.RoleUser, domain.RoleAdmin),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /api/auth/change-password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			authn,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			OptionalAuthenticate(r.Resolver),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.sessions),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /health",
		httpx.Chain(http.HandlerFunc(HealthHandler),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", r.metrics.Handler())
	}
}
