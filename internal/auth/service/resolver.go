package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// Credentials are the identity proofs a request carried.
type Credentials struct {
	Session SessionHandle
	// Token is the raw JWT from the token cookie or, failing that, the
	// bearer header.
	Token string
}

// IdentityResolver turns request credentials into a user. Proofs are tried
// in order; the session proof never rejects, it only falls through.
type IdentityResolver struct {
	Store    store.Store
	Tokens   jwtx.Verifier
	Observer Observer
}

// proof attempts one way of establishing identity. ok=false with a nil
// error means the proof did not apply and the next one should run.
type proof func(ctx context.Context, creds Credentials) (user domain.PublicUser, ok bool, err error)

// Resolve returns the authenticated user or a 401/500 domain error.
func (r *IdentityResolver) Resolve(ctx context.Context, creds Credentials) (domain.PublicUser, error) {
	for _, p := range []proof{r.sessionProof, r.tokenProof} {
		u, ok, err := p(ctx, creds)
		if err != nil {
			return domain.PublicUser{}, err
		}
		if ok {
			return u, nil
		}
	}
	return domain.PublicUser{}, domain.ErrTokenMissing
}

func (r *IdentityResolver) sessionProof(ctx context.Context, creds Credentials) (domain.PublicUser, bool, error) {
	if creds.Session == nil {
		return domain.PublicUser{}, false, nil
	}
	userID, ok := creds.Session.Identity()
	if !ok {
		return domain.PublicUser{}, false, nil
	}

	obs := observerOrNop(r.Observer)

	u, err := r.Store.Users().GetUserByID(ctx, userID)
	switch {
	case err == nil:
		obs.IdentityResolution(ProofSession, OutcomeSuccess)
		return u, true, nil
	case errors.Is(err, store.ErrNotFound):
		// Stale session: the user is gone. Let the token decide.
		obs.IdentityResolution(ProofSession, "stale")
		return domain.PublicUser{}, false, nil
	default:
		obs.IdentityResolution(ProofSession, "error")
		return domain.PublicUser{}, false, domain.Unexpected("failed to load session user", err)
	}
}

func (r *IdentityResolver) tokenProof(ctx context.Context, creds Credentials) (domain.PublicUser, bool, error) {
	obs := observerOrNop(r.Observer)
	l := slogx.FromContext(ctx)

	if creds.Token == "" {
		obs.IdentityResolution(ProofToken, "missing")
		return domain.PublicUser{}, false, domain.ErrTokenMissing
	}

	claims, err := r.Tokens.Verify(creds.Token)
	if err != nil {
		obs.IdentityResolution(ProofToken, "invalid")
		l.Debug("token rejected", slog.String("reason", err.Error()))
		return domain.PublicUser{}, false, domain.ErrInvalidToken
	}

	if !idx.Valid(claims.Subject) {
		obs.IdentityResolution(ProofToken, "invalid")
		l.Debug("token rejected", slog.String("reason", "subject is not a user id"))
		return domain.PublicUser{}, false, domain.ErrInvalidToken
	}

	u, err := r.Store.Users().GetUserByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		obs.IdentityResolution(ProofToken, "unknown_user")
		return domain.PublicUser{}, false, domain.ErrUserNotFound
	}
	if err != nil {
		obs.IdentityResolution(ProofToken, "error")
		return domain.PublicUser{}, false, domain.Unexpected("failed to load token user", err)
	}

	if creds.Session != nil {
		if err := creds.Session.Authenticate(ctx, u.ID); err != nil {
			l.Warn("failed to renew session", "user_id", u.ID, "error", err)
		}
	}

	obs.IdentityResolution(ProofToken, OutcomeSuccess)
	return u, true, nil
}
