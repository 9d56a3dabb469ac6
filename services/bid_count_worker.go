package services

import (
	"context"
	"sync"
	"time"

	"solosphere/db"
	"solosphere/metrics"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BidCountWorker recomputes bid_count from the bids collection. It is the
// only writer that may lower a job's count: increments lost to a failed
// store call or bids removed by hand are corrected here.
type BidCountWorker struct {
	jobQueue   chan primitive.ObjectID
	jobs       db.JobStore
	bids       db.BidStore
	stopChan   chan struct{}
	numWorkers int
	log        *zerolog.Logger
	wg         sync.WaitGroup
	stopOnce   sync.Once
}

// NewBidCountWorker creates a worker pool with a buffered queue of job ids.
func NewBidCountWorker(jobs db.JobStore, bids db.BidStore, queueSize, numWorkers int, logger *zerolog.Logger) *BidCountWorker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &BidCountWorker{
		jobQueue:   make(chan primitive.ObjectID, queueSize),
		jobs:       jobs,
		bids:       bids,
		stopChan:   make(chan struct{}),
		numWorkers: numWorkers,
		log:        logger,
	}
}

// Start launches the worker goroutines.
func (w *BidCountWorker) Start() {
	w.log.Info().Int("workers", w.numWorkers).Msg("starting bid count workers")
	for i := 1; i <= w.numWorkers; i++ {
		w.wg.Add(1)
		go w.worker(i)
	}
}

func (w *BidCountWorker) worker(id int) {
	defer w.wg.Done()
	for {
		select {
		case jobID := <-w.jobQueue:
			w.reconcile(jobID)
		case <-w.stopChan:
			w.log.Debug().Int("worker", id).Msg("bid count worker stopped")
			return
		}
	}
}

// reconcile sets one job's bid_count to the number of bids referencing it.
// A bid created between the count and the write is picked up next run.
func (w *BidCountWorker) reconcile(jobID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	l := w.log.With().Str("job_id", jobID.Hex()).Logger()

	job, err := w.jobs.FindByID(ctx, jobID)
	if err != nil {
		metrics.IncReconciled("failed")
		l.Error().Err(err).Msg("reconcile: load job")
		return
	}
	if job == nil {
		return
	}

	count, err := w.bids.CountForJob(ctx, jobID.Hex())
	if err != nil {
		metrics.IncReconciled("failed")
		l.Error().Err(err).Msg("reconcile: count bids")
		return
	}

	current := job.BidCount()
	if current == count {
		metrics.IncReconciled("unchanged")
		return
	}
	l.Info().Int64("from", current).Int64("to", count).Msg("correcting bid_count")

	if _, err := w.jobs.SetBidCount(ctx, jobID, count); err != nil {
		metrics.IncReconciled("failed")
		l.Error().Err(err).Msg("reconcile: set bid_count")
		return
	}
	metrics.IncReconciled("corrected")
}

// Enqueue queues a job for reconciliation. It blocks while the queue is full
// and gives up when ctx ends or the worker is stopped.
func (w *BidCountWorker) Enqueue(ctx context.Context, jobID primitive.ObjectID) bool {
	select {
	case w.jobQueue <- jobID:
		return true
	case <-ctx.Done():
		return false
	case <-w.stopChan:
		return false
	}
}

// EnqueueAll queues every job in the store and reports how many were queued.
func (w *BidCountWorker) EnqueueAll(ctx context.Context) (int, error) {
	ids, err := w.jobs.IDs(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		if !w.Enqueue(ctx, id) {
			break
		}
		n++
	}
	return n, nil
}

// Stop signals the workers and waits for in-flight reconciliations.
func (w *BidCountWorker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info().Msg("stopping bid count workers")
		close(w.stopChan)
	})
	w.wg.Wait()
}
