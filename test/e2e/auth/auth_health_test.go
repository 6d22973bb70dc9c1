//go:build e2e

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLivezEndpoint verifies the liveness check endpoint.
func TestLivezEndpoint(t *testing.T) {
	client := newClient(t, setupAuthService(t))

	health, err := client.GetLiveness(t.Context())
	assertHealthy(t, health, err)
}

// TestReadyzEndpoint verifies readiness reports both backing stores.
func TestReadyzEndpoint(t *testing.T) {
	client := newClient(t, setupAuthService(t))

	health, err := client.GetReadiness(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Sessions)
}

// TestHealthEndpoint verifies the plain health endpoint.
func TestHealthEndpoint(t *testing.T) {
	client := newClient(t, setupAuthService(t))

	status, err := client.Health(t.Context())
	require.NoError(t, err)
	require.Equal(t, "OK", status.Status)
}
