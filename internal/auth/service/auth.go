package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// AuthService implements register, login, me, change-password and logout.
type AuthService struct {
	Store    store.Store
	Hasher   *cryptox.PasswordHasher
	Tokens   jwtx.Issuer
	Observer Observer

	dummyOnce sync.Once
	dummyHash string
}

// Register creates an account, issues a token and authenticates sess.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, sess SessionHandle) (res domain.AuthResult, err error) {
	defer func() { observerOrNop(s.Observer).AuthOperation(OpRegister, Outcome(err)) }()

	if err := in.Validate(); err != nil {
		return domain.AuthResult{}, err
	}

	users := s.Store.Users()

	_, err = users.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return domain.AuthResult{}, domain.ErrEmailInUse
	case !errors.Is(err, store.ErrNotFound):
		return domain.AuthResult{}, domain.Unexpected("failed to look up email", err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.AuthResult{}, domain.Unexpected("failed to hash password", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	u := domain.User{
		ID:           idx.New().String(),
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		Role:         domain.DefaultRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := users.CreateUser(ctx, u); err != nil {
		// A concurrent registration can win between the lookup and the insert.
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.AuthResult{}, domain.ErrEmailInUse
		}
		return domain.AuthResult{}, domain.Unexpected("failed to create user", err)
	}

	slogx.FromContext(ctx).Info("user registered", "user_id", u.ID)

	return s.establish(ctx, u.Public(), sess)
}

// Login checks credentials, issues a token and authenticates sess. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, in LoginInput, sess SessionHandle) (res domain.AuthResult, err error) {
	defer func() { observerOrNop(s.Observer).AuthOperation(OpLogin, Outcome(err)) }()

	if err := in.Validate(); err != nil {
		return domain.AuthResult{}, err
	}

	creds, err := s.Store.Users().GetCredentialsByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		_ = s.Hasher.Verify(in.Password, s.timingHash())
		return domain.AuthResult{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.AuthResult{}, domain.Unexpected("failed to load credentials", err)
	}

	if err := s.Hasher.Verify(in.Password, creds.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Info("login rejected", "user_id", creds.ID)
			return domain.AuthResult{}, domain.ErrInvalidCredentials
		}
		return domain.AuthResult{}, domain.Unexpected("failed to verify password", err)
	}

	if s.Hasher.NeedsRehash(creds.PasswordHash) {
		s.rehash(ctx, creds.ID, in.Password)
	}

	return s.establish(ctx, creds.Public(), sess)
}

// rehash upgrades a stored hash to the configured cost. Login does not
// depend on it succeeding.
func (s *AuthService) rehash(ctx context.Context, userID, password string) {
	log := slogx.FromContext(ctx)

	hash, err := s.Hasher.Hash(password)
	if err == nil {
		err = s.Store.Users().UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil {
		log.Warn("failed to upgrade password hash", "user_id", userID, "error", err)
		return
	}
	log.Info("password hash upgraded", "user_id", userID, "cost", s.Hasher.Cost())
}

// Logout destroys the session. It never fails; store errors are logged.
func (s *AuthService) Logout(ctx context.Context, sess SessionHandle) {
	observerOrNop(s.Observer).AuthOperation(OpLogout, OutcomeSuccess)

	if sess == nil {
		return
	}
	if err := sess.Destroy(ctx); err != nil {
		slogx.FromContext(ctx).Warn("failed to destroy session", "error", err)
	}
}

// establish issues a token for u and binds the session to it.
func (s *AuthService) establish(ctx context.Context, u domain.PublicUser, sess SessionHandle) (domain.AuthResult, error) {
	token, expiresAt, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return domain.AuthResult{}, domain.Unexpected("failed to issue token", err)
	}

	if sess != nil {
		if err := sess.Authenticate(ctx, u.ID); err != nil {
			// The token alone still authenticates the client.
			slogx.FromContext(ctx).Warn("failed to authenticate session", "user_id", u.ID, "error", err)
		}
	}

	return domain.AuthResult{
		User:  u,
		Token: domain.IssuedToken{Value: token, ExpiresAt: expiresAt},
	}, nil
}

// timingHash is a hash of a throwaway value, computed once at the
// configured cost, for comparisons against unknown accounts.
func (s *AuthService) timingHash() string {
	s.dummyOnce.Do(func() {
		v, err := cryptox.RandomString(cryptox.NonceSize)
		if err == nil {
			s.dummyHash, err = s.Hasher.Hash(v)
		}
		if err != nil {
			slogx.FromContext(context.Background()).Error("failed to build timing hash", "error", err)
		}
	})
	return s.dummyHash
}
