//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newContainerStore(t *testing.T) *postgres.Store {
	t.Helper()

	if _, err := testcontainers.ProviderDocker.GetProvider(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("gatekeeper"),
		tcpostgres.WithUsername("gatekeeper"),
		tcpostgres.WithPassword("gatekeeper"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	st, err := postgres.NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func TestPostgres_UserLifecycle(t *testing.T) {
	st := newContainerStore(t)
	ctx := context.Background()

	// Re-running migrations is a no-op.
	require.NoError(t, st.ApplyMigrations())

	u := domain.User{
		ID:           idx.New().String(),
		Email:        "a@x.com",
		Name:         "Ann",
		PasswordHash: "$2a$04$hash",
		Role:         domain.RoleUser,
	}
	require.NoError(t, st.Users().CreateUser(ctx, u))

	dup := u
	dup.ID = idx.New().String()
	require.ErrorIs(t, st.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	got, err := st.Users().GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	require.NoError(t, st.Users().UpdatePasswordHash(ctx, u.ID, "$2a$04$new"))
	creds, err := st.Users().GetCredentialsByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "$2a$04$new", creds.PasswordHash)

	require.NoError(t, st.Users().DeleteUser(ctx, u.ID))
	_, err = st.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
