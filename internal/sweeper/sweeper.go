// Package sweeper runs the periodic maintenance pass: resync the live
// schedule from storage and prune push tokens that have gone quiet.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dosepilot/reminder-service/internal/metrics"
	"github.com/dosepilot/reminder-service/internal/repository"
)

type resyncer interface {
	Rehydrate(ctx context.Context) (int, error)
}

type Sweeper struct {
	cron     *cron.Cron
	spec     string
	resyncer resyncer
	devices  repository.DeviceRepository
	tokenTTL time.Duration
	logger   *slog.Logger
}

func New(spec string, r resyncer, devices repository.DeviceRepository, tokenTTL time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		cron:     cron.New(),
		spec:     spec,
		resyncer: r,
		devices:  devices,
		tokenTTL: tokenTTL,
		logger:   logger.With("component", "sweeper"),
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("sweeper started", "schedule", s.spec, "token_ttl", s.tokenTTL)
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("sweeper stopped")
}

// sweep rebuilds every user's jobs from the stored sets, which also drops
// jobs for medications whose course has since ended, then deletes devices not
// seen within the TTL. Both halves are best-effort.
func (s *Sweeper) sweep() {
	ctx := context.Background()
	start := time.Now()

	users, err := s.resyncer.Rehydrate(ctx)
	if err != nil {
		s.logger.Error("sweep resync failed", "error", err)
	} else {
		metrics.SweepUsersResyncedTotal.Add(float64(users))
	}

	pruned, err := s.devices.DeleteStale(ctx, time.Now().Add(-s.tokenTTL))
	if err != nil {
		s.logger.Error("stale device prune failed", "error", err)
	} else if pruned > 0 {
		metrics.SweepDevicesPrunedTotal.Add(float64(pruned))
	}

	metrics.SweepDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("sweep complete",
		"users_resynced", users,
		"devices_pruned", pruned,
		"duration", time.Since(start),
	)
}
