package service

import (
	"slices"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
)

// Authorize gates an already-resolved user on role membership. An empty
// required set admits any authenticated user.
func Authorize(user *domain.PublicUser, required ...domain.Role) error {
	if user == nil {
		return domain.ErrUnauthenticated
	}
	if len(required) == 0 {
		return nil
	}
	if slices.Contains(required, user.Role) {
		return nil
	}
	return domain.ErrForbidden
}
