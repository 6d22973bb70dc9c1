package service

import (
	"context"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
)

// Operation names reported to an Observer.
const (
	OpRegister       = "register"
	OpLogin          = "login"
	OpMe             = "me"
	OpChangePassword = "change_password"
	OpLogout         = "logout"
)

// Proof names reported for identity resolution.
const (
	ProofSession = "session"
	ProofToken   = "token"
)

const OutcomeSuccess = "success"

// Observer receives operation outcomes. internal/auth/metrics implements it
// with prometheus counters.
type Observer interface {
	AuthOperation(op, outcome string)
	IdentityResolution(proof, outcome string)
}

type nopObserver struct{}

func (nopObserver) AuthOperation(string, string)      {}
func (nopObserver) IdentityResolution(string, string) {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}

// Outcome turns an operation error into a low-cardinality label.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	return domain.AsError(err).Kind.String()
}

// SessionHandle is the request-scoped session the operations act on.
// *session.Handle implements it.
type SessionHandle interface {
	Identity() (userID string, ok bool)
	Authenticate(ctx context.Context, userID string) error
	Destroy(ctx context.Context) error
}
