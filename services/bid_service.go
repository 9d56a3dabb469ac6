package services

import (
	"context"
	"fmt"

	"solosphere/db"
	"solosphere/logging"
	"solosphere/metrics"
	"solosphere/models"

	"github.com/rs/zerolog"
)

// BidService implements the bid operations and their side effect on the
// parent job's bid_count.
type BidService struct {
	bids db.BidStore
	jobs db.JobStore
	log  *zerolog.Logger
	dev  bool
}

func NewBidService(bids db.BidStore, jobs db.JobStore, logger *zerolog.Logger, dev bool) *BidService {
	return &BidService{bids: bids, jobs: jobs, log: logger, dev: dev}
}

// CreateBid stores a bid and bumps the job's bid_count.
//
// The duplicate lookup and the insert are separate store calls, so two
// concurrent submissions of the same (email, jobId) can both succeed. A bid
// on a job that no longer exists is still created; the increment simply
// matches nothing. The stored jobId is the canonical lowercase hex, so the
// duplicate lookup and bid counting see one spelling per job.
func (s *BidService) CreateBid(ctx context.Context, payload models.Document) (models.InsertResult, error) {
	jobIDStr, _ := payload[models.FieldJobID].(string)
	jobID, err := models.ParseID(jobIDStr)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("jobId: %w", err)
	}
	jobIDStr = jobID.Hex()
	email := payload.StringAt(models.FieldEmail)
	l := logging.With(ctx, s.log).With().
		Str("job_id", jobIDStr).
		Str("bidder", logging.Redact(email, s.dev)).
		Logger()

	existing, err := s.bids.FindOne(ctx, email, jobIDStr)
	if err != nil {
		metrics.IncBid("failed")
		return models.InsertResult{}, err
	}
	if existing != nil {
		metrics.IncBid("duplicate")
		l.Info().Msg("duplicate bid rejected")
		return models.InsertResult{}, models.ErrDuplicateBid
	}

	doc := payload.Clone()
	delete(doc, models.FieldID)
	doc[models.FieldJobID] = jobIDStr
	if doc.Status() == "" {
		doc[models.FieldStatus] = models.StatusPending
	}

	bidID, err := s.bids.Insert(ctx, doc)
	if err != nil {
		metrics.IncBid("failed")
		return models.InsertResult{}, err
	}
	metrics.IncBid("created")

	matched, err := s.jobs.IncrementBidCount(ctx, jobID)
	if err != nil {
		// The bid stays; the reconciler repairs the count.
		metrics.IncBidCountIncrement("failed")
		l.Error().Err(err).Str("bid_id", bidID.Hex()).Msg("bid stored but bid_count increment failed")
		return models.InsertResult{}, err
	}
	if matched == 0 {
		metrics.IncBidCountIncrement("orphan")
		l.Warn().Str("bid_id", bidID.Hex()).Msg("bid placed on a job that does not exist")
	} else {
		metrics.IncBidCountIncrement("matched")
	}

	l.Debug().Str("bid_id", bidID.Hex()).Msg("bid created")
	return models.InsertResult{Acknowledged: true, InsertedID: bidID}, nil
}

// ListForUser returns the bids email placed, or with asBuyer the bids placed
// on jobs email owns.
func (s *BidService) ListForUser(ctx context.Context, email string, asBuyer bool) ([]models.Document, error) {
	if asBuyer {
		return s.bids.FindByBuyer(ctx, email)
	}
	return s.bids.FindByBidder(ctx, email)
}

// UpdateStatus writes status verbatim, whatever its JSON type; a missing bid
// reports MatchedCount 0.
func (s *BidService) UpdateStatus(ctx context.Context, id string, status interface{}) (models.UpdateResult, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	return s.bids.UpdateStatus(ctx, oid, status)
}
