//go:build e2e

package auth_test

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/app"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for auth service end-to-end tests.
 * Postgres and Redis run in containers shared by the whole package; every
 * test gets its own in-process service wired exactly as cmd/auth wires it.
 */

const (
	testSecret   = "e2e-secret-0123456789abcdef0123456789"
	testPassword = "Passw0rd!"
)

var (
	postgresURL string
	redisURL    string
)

// TestMain starts the backing containers once before all tests and removes
// them after all tests complete.
func TestMain(m *testing.M) {
	ctx := context.Background()

	if _, err := testcontainers.ProviderDocker.GetProvider(); err != nil {
		fmt.Fprintf(os.Stdout, "docker unavailable, skipping e2e tests: %v\n", err)
		os.Exit(0)
	}

	fmt.Fprintf(os.Stdout, "Starting Postgres and Redis containers...")

	pg, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("gatekeeper"),
		tcpostgres.WithUsername("gatekeeper"),
		tcpostgres.WithPassword("gatekeeper"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to start postgres: %v\n", err)
		os.Exit(1)
	}

	rd, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		_ = testcontainers.TerminateContainer(pg)
		fmt.Fprintf(os.Stderr, "\nFailed to start redis: %v\n", err)
		os.Exit(1)
	}

	if err := resolveEndpoints(ctx, pg, rd); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to resolve container endpoints: %v\n", err)
		_ = testcontainers.TerminateContainer(rd)
		_ = testcontainers.TerminateContainer(pg)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up containers...")
	_ = testcontainers.TerminateContainer(rd)
	_ = testcontainers.TerminateContainer(pg)
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func resolveEndpoints(ctx context.Context, pg *tcpostgres.PostgresContainer, rd testcontainers.Container) error {
	var err error
	postgresURL, err = pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return err
	}

	host, err := rd.Host(ctx)
	if err != nil {
		return err
	}
	port, err := rd.MappedPort(ctx, "6379/tcp")
	if err != nil {
		return err
	}
	redisURL = fmt.Sprintf("redis://%s:%s/0", host, port.Port())
	return nil
}

// testConfig mirrors a production deployment on postgres and redis, with a
// cheap bcrypt cost so the suite stays fast.
func testConfig() app.Config {
	return app.Config{
		Issuer:               "gatekeeper-e2e",
		JWTSecret:            testSecret,
		JWTExpiresIn:         "1h",
		BcryptCost:           4,
		DatabaseDriver:       app.DriverPostgres,
		DatabaseURL:          postgresURL,
		SessionStore:         app.SessionStoreRedis,
		RedisURL:             redisURL,
		SessionTTL:           time.Hour,
		SessionCookie:        "sid",
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  5 * time.Second,
		HousekeepingInterval: time.Hour,
	}
}

// setupAuthService starts the service in-process and returns its base URL.
func setupAuthService(t *testing.T) string {
	t.Helper()

	application, err := app.New(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	return srv.URL
}

func newClient(t *testing.T, baseURL string) *authsdk.SDKClient {
	t.Helper()
	client, err := authsdk.NewSDKClient(baseURL)
	require.NoError(t, err)
	return client
}

// uniqueEmail keeps tests independent on the shared database.
func uniqueEmail(t *testing.T) string {
	t.Helper()
	return "user-" + strings.ToLower(idx.New().String()) + "@e2e.test"
}

// registerUser creates an account and returns the authenticated client.
func registerUser(t *testing.T, baseURL, name string) (*authsdk.SDKClient, *authsdk.AuthResponse, string) {
	t.Helper()

	client := newClient(t, baseURL)
	email := uniqueEmail(t)

	resp, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: testPassword,
	})
	require.NoError(t, err, "Register should succeed")
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Token)

	return client, resp, email
}

// assertStatus checks that err is an API error with the given status.
func assertStatus(t *testing.T, err error, status int, context string) {
	t.Helper()
	require.Error(t, err, context)

	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr), "%s - expected an API error, got: %v", context, err)
	require.Equal(t, status, apiErr.StatusCode, "%s - %s", context, apiErr.Message)
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
