// Package scheduler advances flight statuses on a fixed interval.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Advancer moves due flights forward and reports how many changed.
type Advancer interface {
	AdvanceStatuses(ctx context.Context) (int, error)
}

type Scheduler struct {
	advancer Advancer
	interval time.Duration
	log      *zap.Logger
}

func New(advancer Advancer, interval time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		advancer: advancer,
		interval: interval,
		log:      log.With(zap.String("component", "flight-status-scheduler")),
	}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("scheduler started", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.Tick(ctx)
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick runs one sweep. Errors are logged; the next tick tries again.
func (s *Scheduler) Tick(ctx context.Context) {
	n, err := s.advancer.AdvanceStatuses(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Error("advance flight statuses", zap.Error(err))
		}
		return
	}
	if n > 0 {
		s.log.Info("flight statuses advanced", zap.Int("flights", n))
	}
}
