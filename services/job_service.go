package services

import (
	"context"
	"fmt"
	"regexp"

	"solosphere/db"
	"solosphere/logging"
	"solosphere/metrics"
	"solosphere/models"

	"github.com/rs/zerolog"
)

// JobService implements the job operations of the marketplace. Documents are
// stored as posted; the service only owns _id and the bid_count default.
type JobService struct {
	jobs db.JobStore
	log  *zerolog.Logger
}

func NewJobService(jobs db.JobStore, logger *zerolog.Logger) *JobService {
	return &JobService{jobs: jobs, log: logger}
}

// Create inserts a job and returns its generated id. No field is required;
// bid_count starts at 0 unless the payload sets it.
func (s *JobService) Create(ctx context.Context, payload models.Document) (models.InsertResult, error) {
	doc := payload.Clone()
	if doc == nil {
		doc = models.Document{}
	}
	delete(doc, models.FieldID)
	if _, ok := doc[models.FieldBidCount]; !ok {
		doc[models.FieldBidCount] = 0
	}

	id, err := s.jobs.Insert(ctx, doc)
	if err != nil {
		return models.InsertResult{}, err
	}
	metrics.IncJobCreated()
	logging.With(ctx, s.log).Debug().Str("job_id", id.Hex()).Msg("job created")
	return models.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (s *JobService) ListAll(ctx context.Context) ([]models.Document, error) {
	return s.jobs.FindAll(ctx)
}

// ListByOwnerEmail matches buyer.email exactly; no case folding.
func (s *JobService) ListByOwnerEmail(ctx context.Context, email string) ([]models.Document, error) {
	return s.jobs.FindByOwnerEmail(ctx, email)
}

// GetByID returns nil without error when the job does not exist.
func (s *JobService) GetByID(ctx context.Context, id string) (models.Document, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.jobs.FindByID(ctx, oid)
}

// DeleteByID is idempotent: a missing job reports DeletedCount 0.
func (s *JobService) DeleteByID(ctx context.Context, id string) (models.DeleteResult, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return models.DeleteResult{}, err
	}
	n, err := s.jobs.DeleteByID(ctx, oid)
	if err != nil {
		return models.DeleteResult{}, err
	}
	return models.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

// UpsertByID merges fields into the job, leaving fields not mentioned as
// they are, or creates the job under id when it does not exist.
func (s *JobService) UpsertByID(ctx context.Context, id string, fields models.Document) (models.UpdateResult, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	set := fields.Clone()
	delete(set, models.FieldID)
	return s.jobs.UpsertByID(ctx, oid, set)
}

// Search returns jobs whose title matches pattern, ignoring case, and, when
// category is non-empty, whose category equals it. An empty pattern matches
// every job.
func (s *JobService) Search(ctx context.Context, pattern, category string) ([]models.Document, error) {
	if pattern != "" {
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			return nil, fmt.Errorf("%w: search pattern: %v", models.ErrInvalidArgument, err)
		}
	}
	return s.jobs.Search(ctx, pattern, category)
}
