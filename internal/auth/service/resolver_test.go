package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestResolve_SessionOnly(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "Ann", "a@x.com")

	sess := &fakeSession{userID: reg.User.ID}
	u, err := f.resolver.Resolve(context.Background(), service.Credentials{Session: sess})
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, u.ID)
	require.Zero(t, sess.authCalls, "session proof must not renew")
	require.Equal(t, 1, f.observer.resolutions["session/success"])
}

func TestResolve_TokenOnlyRenewsSession(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "Ann", "a@x.com")

	sess := &fakeSession{}
	u, err := f.resolver.Resolve(context.Background(), service.Credentials{Session: sess, Token: reg.Token.Value})
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, u.ID)

	id, ok := sess.Identity()
	require.True(t, ok)
	require.Equal(t, reg.User.ID, id)
}

func TestResolve_RenewalFailureIsTolerated(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "Ann", "a@x.com")

	sess := &fakeSession{authErr: errors.New("store down")}
	u, err := f.resolver.Resolve(context.Background(), service.Credentials{Session: sess, Token: reg.Token.Value})
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, u.ID)
}

func TestResolve_Rejections(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "Ann", "a@x.com")
	ghost := f.register(t, "Gus", "gone@x.com")
	require.NoError(t, f.store.Users().DeleteUser(context.Background(), ghost.User.ID))

	otherIssuer, err := jwtx.NewHS256([]byte("ffffffffffffffffffffffffffffffff"), testIssuer, time.Hour)
	require.NoError(t, err)
	forged, _, err := otherIssuer.Issue(reg.User.ID)
	require.NoError(t, err)

	expiredIssuer, err := jwtx.NewHS256([]byte(testSecret), testIssuer, time.Minute,
		jwtx.WithClock(func() time.Time { return time.Now().Add(-time.Hour) }))
	require.NoError(t, err)
	expired, _, err := expiredIssuer.Issue(reg.User.ID)
	require.NoError(t, err)

	foreign, _, err := f.tokens.Issue("admin")
	require.NoError(t, err)

	tests := []struct {
		name    string
		creds   service.Credentials
		wantErr error
	}{
		{name: "no proofs", creds: service.Credentials{}, wantErr: domain.ErrTokenMissing},
		{name: "anonymous session no token", creds: service.Credentials{Session: &fakeSession{}}, wantErr: domain.ErrTokenMissing},
		{name: "garbage token", creds: service.Credentials{Token: "not.a.jwt"}, wantErr: domain.ErrInvalidToken},
		{name: "wrong secret", creds: service.Credentials{Token: forged}, wantErr: domain.ErrInvalidToken},
		{name: "expired", creds: service.Credentials{Token: expired}, wantErr: domain.ErrInvalidToken},
		{name: "valid token for deleted user", creds: service.Credentials{Token: ghost.Token.Value}, wantErr: domain.ErrUserNotFound},
		{name: "subject is not a user id", creds: service.Credentials{Token: foreign}, wantErr: domain.ErrInvalidToken},
		{
			name:    "stale session falls through to missing token",
			creds:   service.Credentials{Session: &fakeSession{userID: ghost.User.ID}},
			wantErr: domain.ErrTokenMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.resolver.Resolve(context.Background(), tt.creds)
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, 401, domain.AsError(err).Status)
		})
	}
}

func TestResolve_StaleSessionWithValidToken(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "Ann", "a@x.com")

	sess := &fakeSession{userID: "01HZZZZZZZZZZZZZZZZZZZZZZZ"}
	u, err := f.resolver.Resolve(context.Background(), service.Credentials{Session: sess, Token: reg.Token.Value})
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, u.ID)

	id, _ := sess.Identity()
	require.Equal(t, reg.User.ID, id)
}

// brokenStore fails every user lookup.
type brokenStore struct {
	store.Store
}

func (s brokenStore) Users() store.Users { return brokenUsers{s.Store.Users()} }

type brokenUsers struct {
	store.Users
}

func (brokenUsers) GetUserByID(context.Context, string) (domain.PublicUser, error) {
	return domain.PublicUser{}, errors.New("disk on fire")
}

func TestResolve_StoreFailureIsUnexpected(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "Ann", "a@x.com")
	f.resolver.Store = brokenStore{f.store}

	_, err := f.resolver.Resolve(context.Background(), service.Credentials{Session: &fakeSession{userID: reg.User.ID}})
	require.Equal(t, 500, domain.AsError(err).Status)

	_, err = f.resolver.Resolve(context.Background(), service.Credentials{Token: reg.Token.Value})
	require.Equal(t, 500, domain.AsError(err).Status)
}

func TestAuthorize(t *testing.T) {
	admin := &domain.PublicUser{ID: "a", Role: domain.RoleAdmin}
	user := &domain.PublicUser{ID: "u", Role: domain.RoleUser}

	tests := []struct {
		name     string
		user     *domain.PublicUser
		required []domain.Role
		wantErr  error
	}{
		{name: "no user", user: nil, wantErr: domain.ErrUnauthenticated},
		{name: "no roles required", user: user},
		{name: "role matches", user: admin, required: []domain.Role{domain.RoleAdmin}},
		{name: "one of several", user: user, required: []domain.Role{domain.RoleAdmin, domain.RoleUser}},
		{name: "role missing", user: user, required: []domain.Role{domain.RoleAdmin}, wantErr: domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.Authorize(tt.user, tt.required...)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	require.Equal(t, 403, domain.AsError(service.Authorize(user, domain.RoleAdmin)).Status)
	require.Equal(t, "Unauthorized access", service.Authorize(user, domain.RoleAdmin).Error())
}
