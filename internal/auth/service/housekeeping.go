package service

import (
	"context"
	"log/slog"
	"time"
)

// SessionSweeper removes expired sessions. session.Store satisfies it.
type SessionSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// HousekeepingService periodically drops expired sessions so the in-process
// store does not grow without bound. Stores with native expiry report zero.
type HousekeepingService struct {
	Sessions SessionSweeper
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(sessions SessionSweeper, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HousekeepingService{
		Sessions: sessions,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep runs one cleanup pass and reports how many sessions were removed.
func (s *HousekeepingService) Sweep(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, s.Interval)
	defer cancel()

	n, err := s.Sessions.DeleteExpired(ctx, time.Now())
	if err != nil {
		s.Logger.Error("failed to delete expired sessions", "error", err)
		return 0
	}

	if n > 0 {
		s.Logger.Info("housekeeping cleanup completed", "expired_sessions", n)
	} else {
		s.Logger.Debug("housekeeping cleanup completed", "expired_sessions", 0)
	}
	return n
}
