package services

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ReconcileScheduler periodically queues every job on a BidCountWorker.
type ReconcileScheduler struct {
	cron   *cron.Cron
	spec   string // cron spec, e.g. "@every 6h" or "0 3 * * *"
	worker *BidCountWorker
	log    *zerolog.Logger
}

func NewReconcileScheduler(spec string, worker *BidCountWorker, logger *zerolog.Logger) *ReconcileScheduler {
	return &ReconcileScheduler{
		cron:   cron.New(),
		spec:   spec,
		worker: worker,
		log:    logger,
	}
}

// Start registers the reconcile pass and starts the cron loop.
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.log.Info().Str("spec", s.spec).Msg("bid count reconciliation scheduled")
	return nil
}

// Stop halts the schedule and waits for a running pass to finish queueing.
func (s *ReconcileScheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *ReconcileScheduler) run(ctx context.Context) {
	n, err := s.worker.EnqueueAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("reconcile pass: list jobs")
		return
	}
	s.log.Info().Int("jobs", n).Msg("reconcile pass queued")
}
