package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// MsgPasswordUpdated is returned to the client after a password change.
const MsgPasswordUpdated = "Password updated successfully"

// GetMe re-reads the resolved user so the response reflects the stored row.
func (s *AuthService) GetMe(ctx context.Context, user *domain.PublicUser) (res domain.PublicUser, err error) {
	defer func() { observerOrNop(s.Observer).AuthOperation(OpMe, Outcome(err)) }()

	if user == nil {
		return domain.PublicUser{}, domain.ErrUnauthenticated
	}

	u, err := s.Store.Users().GetUserByID(ctx, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.PublicUser{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.PublicUser{}, domain.Unexpected("failed to load user", err)
	}
	return u, nil
}

// ChangePassword verifies the current password and stores a hash of the new
// one. Tokens and sessions already issued stay valid.
func (s *AuthService) ChangePassword(ctx context.Context, user *domain.PublicUser, in ChangePasswordInput) (err error) {
	defer func() { observerOrNop(s.Observer).AuthOperation(OpChangePassword, Outcome(err)) }()

	if user == nil {
		return domain.ErrUnauthenticated
	}
	if err := in.Validate(); err != nil {
		return err
	}

	creds, err := s.Store.Users().GetCredentialsByEmail(ctx, user.Email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return domain.Unexpected("failed to load credentials", err)
	}

	if err := s.Hasher.Verify(in.CurrentPassword, creds.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.ErrCurrentPasswordIncorrect
		}
		return domain.Unexpected("failed to verify password", err)
	}

	hash, err := s.Hasher.Hash(in.NewPassword)
	if err != nil {
		return domain.Unexpected("failed to hash password", err)
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, creds.ID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return domain.Unexpected("failed to update password", err)
	}

	slogx.FromContext(ctx).Info("password changed", "user_id", creds.ID)
	return nil
}
