// Package session holds server-side session state. The session id is an
// opaque random value carried in a cookie; stores only ever see its
// fingerprint.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
)

// ErrNotFound is returned for unknown and expired sessions alike.
var ErrNotFound = errors.New("session not found")

// Store persists sessions keyed by id. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, id string) (domain.Session, error)
	// Put writes sess, replacing any existing entry. The entry lives until
	// sess.ExpiresAt.
	Put(ctx context.Context, sess domain.Session) error
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes entries that expired before now and reports how
	// many went. Stores with native expiry return 0.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	Ping(ctx context.Context) error
}
