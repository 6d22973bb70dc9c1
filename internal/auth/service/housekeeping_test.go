package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/session"
	"github.com/stretchr/testify/require"
)

type failingSweeper struct{}

func (failingSweeper) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, errors.New("boom")
}

func TestHousekeeping_Sweep(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sessions := session.NewMemoryStore()
	require.NoError(t, sessions.Put(ctx, domain.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)}))
	require.NoError(t, sessions.Put(ctx, domain.Session{ID: "live", ExpiresAt: time.Now().Add(time.Hour)}))

	hk := service.NewHousekeepingService(sessions, logger, time.Hour)
	require.Equal(t, 1, hk.Sweep(ctx))
	require.Equal(t, 1, sessions.Len())

	require.Zero(t, service.NewHousekeepingService(failingSweeper{}, logger, 0).Sweep(ctx))
}

func TestHousekeeping_StartStop(t *testing.T) {
	sessions := session.NewMemoryStore()
	require.NoError(t, sessions.Put(context.Background(), domain.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)}))

	hk := service.NewHousekeepingService(sessions, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour)
	require.Equal(t, time.Hour, hk.Interval)

	hk.Start()
	require.Eventually(t, func() bool { return sessions.Len() == 0 }, time.Second, 10*time.Millisecond)
	hk.Stop()
}
