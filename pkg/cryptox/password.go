package cryptox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when no valid cost is configured.
const DefaultCost = 12

// MaxPasswordBytes is the longest input bcrypt will accept.
const MaxPasswordBytes = 72

var (
	ErrPasswordMismatch = errors.New("cryptox: password does not match")
	ErrPasswordTooLong  = errors.New("cryptox: password exceeds 72 bytes")
)

// PasswordHasher hashes and verifies passwords with bcrypt. The salt is
// generated per hash and stored inside the encoded string.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher with the given cost. A cost outside the
// range bcrypt accepts (including 0 from a missing config value) falls back
// to DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Cost reports the work factor in use.
func (h *PasswordHasher) Cost() int { return h.cost }

// Hash returns the bcrypt encoding of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify compares password against an encoded hash in constant time.
// It returns ErrPasswordMismatch when they differ. Inputs longer than
// MaxPasswordBytes never match: bcrypt only sees the first 72 bytes, so
// accepting them would let any suffix through.
func (h *PasswordHasher) Verify(password, encodedHash string) error {
	tooLong := len(password) > MaxPasswordBytes
	if tooLong {
		password = password[:MaxPasswordBytes]
	}

	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil && tooLong:
		return ErrPasswordMismatch
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("verify password: %w", err)
	}
}

// NeedsRehash reports whether encodedHash was produced with a different cost.
func (h *PasswordHasher) NeedsRehash(encodedHash string) bool {
	cost, err := bcrypt.Cost([]byte(encodedHash))
	if err != nil {
		return true
	}
	return cost != h.cost
}
