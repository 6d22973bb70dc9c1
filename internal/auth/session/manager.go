package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

const (
	DefaultCookieName = "sid"
	DefaultTTL        = 24 * time.Hour
)

// ErrNoSession is returned when a handle is used on a request that did not
// pass through Manager.Middleware.
var ErrNoSession = errors.New("no session on request")

type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager binds a Store to the session cookie.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &Manager{
		store:      store,
		cookieName: opts.CookieName,
		ttl:        opts.TTL,
		secure:     opts.Secure,
		now:        time.Now,
	}
}

func (m *Manager) Store() Store                   { return m.store }
func (m *Manager) CookieName() string             { return m.cookieName }
func (m *Manager) TTL() time.Duration             { return m.ttl }
func (m *Manager) Ping(ctx context.Context) error { return m.store.Ping(ctx) }

// Middleware loads the session named by the request cookie, if any, and
// attaches a Handle to the request context. Unknown or expired ids yield an
// anonymous handle; a store failure is logged and also yields one.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		h := &Handle{m: m, w: w}

		if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
			sess, err := m.store.Get(ctx, c.Value)
			switch {
			case err == nil:
				h.sess = sess
				h.loaded = true
			case errors.Is(err, ErrNotFound):
			default:
				slogx.FromContext(ctx).Warn("session lookup failed", "error", err)
			}
		}

		next.ServeHTTP(w, r.WithContext(WithHandle(ctx, h)))
	})
}

func (m *Manager) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ClearCookie expires the session cookie on the client.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie("", -1, time.Unix(0, 0)))
}

// Handle is the request-scoped view of a session. All methods are safe on a
// nil Handle.
type Handle struct {
	m      *Manager
	w      http.ResponseWriter
	sess   domain.Session
	loaded bool
}

// Identity reports the user the session is authenticated as.
func (h *Handle) Identity() (string, bool) {
	if h == nil || !h.loaded {
		return "", false
	}
	return h.sess.Identity()
}

// Authenticate binds the session to userID. The id is always regenerated so
// a pre-login id cannot be fixed by an attacker; the old entry is dropped.
func (h *Handle) Authenticate(ctx context.Context, userID string) error {
	if h == nil {
		return ErrNoSession
	}

	id, err := cryptox.NewSessionID()
	if err != nil {
		return err
	}

	now := h.m.now()
	sess := domain.Session{
		ID:            id,
		UserID:        userID,
		Authenticated: true,
		ExpiresAt:     now.Add(h.m.ttl),
	}
	if err := h.m.store.Put(ctx, sess); err != nil {
		return err
	}

	if h.loaded {
		if err := h.m.store.Delete(ctx, h.sess.ID); err != nil {
			slogx.FromContext(ctx).Warn("failed to drop replaced session", "error", err)
		}
	}

	h.sess = sess
	h.loaded = true
	http.SetCookie(h.w, h.m.cookie(id, int(h.m.ttl.Seconds()), sess.ExpiresAt))
	return nil
}

// Destroy deletes the stored session and expires the cookie. The cookie is
// cleared even when the store delete fails.
func (h *Handle) Destroy(ctx context.Context) error {
	if h == nil {
		return ErrNoSession
	}

	var err error
	if h.loaded {
		err = h.m.store.Delete(ctx, h.sess.ID)
	}

	h.sess = domain.Session{}
	h.loaded = false
	h.m.ClearCookie(h.w)
	return err
}

type ctxKey struct{}

func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, ctxKey{}, h)
}

// FromContext returns the request's handle, or nil.
func FromContext(ctx context.Context) *Handle {
	h, _ := ctx.Value(ctxKey{}).(*Handle)
	return h
}
