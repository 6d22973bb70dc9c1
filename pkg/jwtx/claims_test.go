package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "auth-service",
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("auth-service"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		err := c.ValidateIssuer("chat-service")
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})
}

func TestValidateSubject(t *testing.T) {
	require.NoError(t, (&jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "01HQ"}}).ValidateSubject())
	require.ErrorIs(t, (&jwtx.Claims{}).ValidateSubject(), jwtx.ErrInvalidClaim)
}

func TestValidateExpiryAt(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("valid token", func(t *testing.T) {
		c := jwtx.NewClaims("user-1", "", time.Minute, now)
		require.NoError(t, c.ValidateExpiryAt(now, 0))
	})

	t.Run("expired token", func(t *testing.T) {
		c := jwtx.NewClaims("user-1", "", time.Minute, now)
		require.ErrorIs(t, c.ValidateExpiryAt(now.Add(2*time.Minute), 0), jwtx.ErrExpired)
	})

	t.Run("expired exactly at exp", func(t *testing.T) {
		c := jwtx.NewClaims("user-1", "", time.Minute, now)
		require.ErrorIs(t, c.ValidateExpiryAt(now.Add(time.Minute), 0), jwtx.ErrExpired)
	})

	t.Run("leeway tolerates skew", func(t *testing.T) {
		c := jwtx.NewClaims("user-1", "", time.Minute, now)
		require.NoError(t, c.ValidateExpiryAt(now.Add(70*time.Second), 30*time.Second))
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := jwtx.NewClaims("user-1", "", time.Minute, now)
		require.ErrorIs(t, c.ValidateExpiryAt(now.Add(-time.Minute), 0), jwtx.ErrNotYetValid)
	})

	t.Run("missing exp", func(t *testing.T) {
		c := &jwtx.Claims{}
		require.ErrorIs(t, c.ValidateExpiryAt(now, 0), jwtx.ErrInvalidClaim)
	})
}

func TestNewClaims(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := jwtx.NewClaims("user-1", "gatekeeper", 24*time.Hour, now)

	require.Equal(t, "user-1", c.Subject)
	require.Equal(t, "gatekeeper", c.Issuer)
	require.Equal(t, now, c.IssuedAt.Time)
	require.Equal(t, now.Add(24*time.Hour), c.ExpiresAt.Time)
	require.NotEmpty(t, c.ID)
	require.NotEqual(t, c.ID, jwtx.NewClaims("user-1", "gatekeeper", time.Hour, now).ID)
}
