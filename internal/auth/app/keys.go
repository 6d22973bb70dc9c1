package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrMissingSecret = errors.New("AUTH_JWT_SECRET or AUTH_JWT_SECRET_FILE is required")

// LoadSecret returns the HS256 signing secret. The environment variable
// wins over the file; surrounding whitespace in the file is ignored.
func LoadSecret(cfg Config) ([]byte, error) {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret), nil
	}
	if cfg.JWTSecretFile == "" {
		return nil, ErrMissingSecret
	}

	raw, err := os.ReadFile(cfg.JWTSecretFile)
	if err != nil {
		return nil, fmt.Errorf("read AUTH_JWT_SECRET_FILE: %w", err)
	}

	secret := strings.TrimSpace(string(raw))
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return []byte(secret), nil
}
