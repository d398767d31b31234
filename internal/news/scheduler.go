package news

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler runs the worker once immediately and then on a fixed interval
// until the context is cancelled. A failed cycle is logged and does not
// stop the loop.
type Scheduler struct {
	worker   *Worker
	interval time.Duration
	log      *zerolog.Logger
}

func NewScheduler(worker *Worker, interval time.Duration, log *zerolog.Logger) *Scheduler {
	return &Scheduler{
		worker:   worker,
		interval: interval,
		log:      log,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.log.Info().Dur("interval", s.interval).Msg("scheduler started")

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	if err := s.worker.Run(cycleCtx); err != nil {
		s.log.Error().Err(err).Msg("ingestion cycle failed")
	}
}
