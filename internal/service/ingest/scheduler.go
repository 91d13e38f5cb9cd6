package ingest

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigem-energia/internal/observability/telemetry"
	"github.com/seu-repo/sigem-energia/internal/ports"
)

// Scheduler runs sync cycles on a fixed interval, once eagerly at start.
// Cycles are single-flight: if one is still running when the next tick
// arrives, the tick is skipped rather than queued or run concurrently.
type Scheduler struct {
	svc      ports.IngestService
	interval time.Duration
	log      *zap.Logger

	busy atomic.Bool
}

func NewScheduler(svc ports.IngestService, interval time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Scheduler{
		svc:      svc,
		interval: interval,
		log:      log,
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("Sync scheduler started", zap.Duration("interval", s.interval))

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Sync scheduler stopped")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if !s.busy.CompareAndSwap(false, true) {
		s.log.Warn("Previous sync cycle still running, deferring to next tick")
		telemetry.SyncCyclesSkipped.Inc()
		return
	}

	go func() {
		defer s.busy.Store(false)
		if _, err := s.svc.SyncAll(ctx); err != nil {
			s.log.Error("Sync cycle failed", zap.Error(err))
		}
	}()
}
