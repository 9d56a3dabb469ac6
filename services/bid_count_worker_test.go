package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"solosphere/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBidCountWorker_ReconcileCorrectsDrift(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	jobID := f.createJob(t, models.Document{"title": "x"})
	for _, email := range []string{"b@x.com", "c@x.com"} {
		if _, err := f.bidSvc.CreateBid(ctx, models.Document{"email": email, "jobId": jobID.Hex()}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := f.jobs.SetBidCount(ctx, jobID, 7); err != nil {
		t.Fatal(err)
	}

	w := NewBidCountWorker(f.jobs, f.bids, 1, 1, newTestLogger())
	w.reconcile(jobID)

	if got := f.job(t, jobID).BidCount(); got != 2 {
		t.Fatalf("bid_count = %d, want 2", got)
	}

	// A second pass leaves a correct count alone.
	w.reconcile(jobID)
	if got := f.job(t, jobID).BidCount(); got != 2 {
		t.Fatalf("bid_count = %d, want 2", got)
	}
}

func TestBidCountWorker_MissingJobIsSkipped(t *testing.T) {
	f := newFixture()
	w := NewBidCountWorker(f.jobs, f.bids, 1, 1, newTestLogger())
	ghost := primitive.NewObjectID()

	w.reconcile(ghost)

	if doc, _ := f.jobs.FindByID(context.Background(), ghost); doc != nil {
		t.Fatalf("reconcile created a job: %v", doc)
	}
}

func TestBidCountWorker_EnqueueAllProcessesEveryJob(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	var ids []primitive.ObjectID
	for i := 0; i < 5; i++ {
		id := f.createJob(t, models.Document{"title": "x", "bid_count": float64(i + 10)})
		ids = append(ids, id)
	}

	w := NewBidCountWorker(f.jobs, f.bids, 2, 3, newTestLogger())
	w.Start()
	defer w.Stop()

	n, err := w.EnqueueAll(ctx)
	if err != nil || n != len(ids) {
		t.Fatalf("EnqueueAll = %d, %v", n, err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for _, id := range ids {
		for f.job(t, id).BidCount() != 0 {
			if time.Now().After(deadline) {
				t.Fatalf("job %s not reconciled", id.Hex())
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func TestBidCountWorker_EnqueueAfterStop(t *testing.T) {
	f := newFixture()
	w := NewBidCountWorker(f.jobs, f.bids, 0, 1, newTestLogger())
	w.Start()
	w.Stop()
	w.Stop()

	if w.Enqueue(context.Background(), primitive.NewObjectID()) {
		t.Fatal("Enqueue succeeded on a stopped worker")
	}
}

func TestReconcileScheduler_RejectsBadSpec(t *testing.T) {
	f := newFixture()
	w := NewBidCountWorker(f.jobs, f.bids, 1, 1, newTestLogger())
	s := NewReconcileScheduler("not a cron spec", w, newTestLogger())

	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid spec")
	}
}

func TestReconcileScheduler_RunQueuesJobs(t *testing.T) {
	f := newFixture()
	id := f.createJob(t, models.Document{"title": "x", "bid_count": float64(4)})

	w := NewBidCountWorker(f.jobs, f.bids, 4, 1, newTestLogger())
	w.Start()
	defer w.Stop()

	s := NewReconcileScheduler("@every 1h", w, newTestLogger())
	s.run(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for f.job(t, id).BidCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("scheduled pass did not reconcile the job")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBidCountWorker_UppercaseJobIDCountsAsTheSameJob(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	jobID := f.createJob(t, models.Document{"title": "x"})
	upper := strings.ToUpper(jobID.Hex())

	if _, err := f.bidSvc.CreateBid(ctx, models.Document{"email": "b@x.com", "jobId": upper}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.bidSvc.CreateBid(ctx, models.Document{"email": "b@x.com", "jobId": jobID.Hex()}); !errors.Is(err, models.ErrDuplicateBid) {
		t.Fatalf("second spelling err = %v, want ErrDuplicateBid", err)
	}
	if got := f.job(t, jobID).BidCount(); got != 1 {
		t.Fatalf("bid_count after bid = %d, want 1", got)
	}

	NewBidCountWorker(f.jobs, f.bids, 1, 1, newTestLogger()).reconcile(jobID)

	if got := f.job(t, jobID).BidCount(); got != 1 {
		t.Fatalf("bid_count after reconcile = %d, want 1", got)
	}
}
