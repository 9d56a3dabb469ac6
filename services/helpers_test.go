package services

import (
	"context"
	"errors"
	"testing"

	"solosphere/db"
	"solosphere/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStoreDown = errors.New("store unavailable")

func newTestLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

type fixture struct {
	jobs   db.JobStore
	bids   db.BidStore
	jobSvc *JobService
	bidSvc *BidService
}

func newFixture() *fixture {
	mem := db.NewMemoryStore()
	return newFixtureWith(mem.Jobs(), mem.Bids())
}

func newFixtureWith(jobs db.JobStore, bids db.BidStore) *fixture {
	return &fixture{
		jobs:   jobs,
		bids:   bids,
		jobSvc: NewJobService(jobs, newTestLogger()),
		bidSvc: NewBidService(bids, jobs, newTestLogger(), false),
	}
}

func (f *fixture) createJob(t *testing.T, doc models.Document) primitive.ObjectID {
	t.Helper()
	res, err := f.jobSvc.Create(context.Background(), doc)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return res.InsertedID
}

func (f *fixture) job(t *testing.T, id primitive.ObjectID) models.Document {
	t.Helper()
	doc, err := f.jobs.FindByID(context.Background(), id)
	if err != nil || doc == nil {
		t.Fatalf("load job %s: %v, %v", id.Hex(), doc, err)
	}
	return doc
}

// failingJobs wraps a JobStore and fails the operations that have an error set.
type failingJobs struct {
	db.JobStore
	errIncrement error
	errSearch    error
	calls        int
}

func (f *failingJobs) IncrementBidCount(ctx context.Context, id primitive.ObjectID) (int64, error) {
	f.calls++
	if f.errIncrement != nil {
		return 0, f.errIncrement
	}
	return f.JobStore.IncrementBidCount(ctx, id)
}

func (f *failingJobs) Search(ctx context.Context, pattern, category string) ([]models.Document, error) {
	f.calls++
	if f.errSearch != nil {
		return nil, f.errSearch
	}
	return f.JobStore.Search(ctx, pattern, category)
}

func (f *failingJobs) FindByID(ctx context.Context, id primitive.ObjectID) (models.Document, error) {
	f.calls++
	return f.JobStore.FindByID(ctx, id)
}

// failingBids wraps a BidStore and fails the operations that have an error set.
type failingBids struct {
	db.BidStore
	errFind   error
	errInsert error
	calls     int
}

func (f *failingBids) FindOne(ctx context.Context, email, jobID string) (models.Document, error) {
	f.calls++
	if f.errFind != nil {
		return nil, f.errFind
	}
	return f.BidStore.FindOne(ctx, email, jobID)
}

func (f *failingBids) Insert(ctx context.Context, doc models.Document) (primitive.ObjectID, error) {
	f.calls++
	if f.errInsert != nil {
		return primitive.NilObjectID, f.errInsert
	}
	return f.BidStore.Insert(ctx, doc)
}
