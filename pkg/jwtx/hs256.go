package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretBytes is the shortest HMAC secret accepted.
const MinSecretBytes = 32

// HS256 issues and verifies HMAC-SHA256 signed tokens with a single shared
// secret. It holds no mutable state once constructed and is safe for
// concurrent use.
type HS256 struct {
	secret []byte
	issuer string
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

// HS256Option customises an HS256.
type HS256Option func(*HS256)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) HS256Option {
	return func(h *HS256) { h.now = now }
}

// WithLeeway allows clock skew when checking exp and nbf.
func WithLeeway(d time.Duration) HS256Option {
	return func(h *HS256) { h.leeway = d }
}

// NewHS256 returns an issuer/verifier for secret. A missing or short secret
// is an error so the caller can refuse to start.
func NewHS256(secret []byte, issuer string, ttl time.Duration, opts ...HS256Option) (*HS256, error) {
	if len(secret) < MinSecretBytes {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	h := &HS256{
		secret: append([]byte(nil), secret...),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// TTL is the lifetime given to issued tokens.
func (h *HS256) TTL() time.Duration { return h.ttl }

// Issue signs a token whose subject is subject and returns it with its expiry.
func (h *HS256) Issue(subject string) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, ErrInvalidClaim
	}

	now := h.now().UTC().Truncate(time.Second)
	claims := NewClaims(subject, h.issuer, h.ttl, now)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwtx: sign: %w", err)
	}
	return token, claims.ExpiresAt.Time, nil
}

// Verify checks the signature and time claims of token. It performs no I/O:
// a valid token does not mean the subject still exists.
func (h *HS256) Verify(token string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(), // time checks below use the injected clock
	)

	var claims Claims
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if err := claims.ValidateSubject(); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateIssuer(h.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiryAt(h.now(), h.leeway); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return ErrInvalidSig
		}
		return fmt.Errorf("%w: %v", ErrAlgMismatch, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrAlgMismatch, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
