package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Random value sizes, in bytes before encoding.
const (
	// SessionIDSize gives 256 bits of entropy (43 chars base64url).
	SessionIDSize = 32
	// NonceSize gives 128 bits of entropy (22 chars base64url).
	NonceSize = 16
)

// RandomString returns size bytes from crypto/rand encoded as base64url
// without padding.
func RandomString(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("random size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewSessionID returns an opaque, unguessable session identifier.
func NewSessionID() (string, error) {
	return RandomString(SessionIDSize)
}

// Fingerprint returns the base64url SHA-256 of value. Session stores key on
// the fingerprint so the raw cookie value never sits at rest.
func Fingerprint(value string) string {
	sum := sha256.Sum256([]byte(value))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
