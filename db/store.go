package db

import (
	"context"

	"solosphere/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobStore is the document-store capability the job operations need. Every
// method is a single store round trip; none of them retry.
type JobStore interface {
	Insert(ctx context.Context, doc models.Document) (primitive.ObjectID, error)
	FindAll(ctx context.Context) ([]models.Document, error)
	FindByOwnerEmail(ctx context.Context, email string) ([]models.Document, error)
	// FindByID returns nil and no error when no job has the id.
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Document, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error)
	// UpsertByID merges fields into the job ($set semantics), inserting a job
	// carrying id when none exists.
	UpsertByID(ctx context.Context, id primitive.ObjectID, fields models.Document) (models.UpdateResult, error)
	// Search matches pattern case-insensitively against title. An empty
	// pattern or category leaves that criterion out.
	Search(ctx context.Context, pattern, category string) ([]models.Document, error)
	// IncrementBidCount atomically adds one to bid_count and reports how many
	// jobs matched (0 or 1).
	IncrementBidCount(ctx context.Context, id primitive.ObjectID) (int64, error)
	SetBidCount(ctx context.Context, id primitive.ObjectID, count int64) (int64, error)
	IDs(ctx context.Context) ([]primitive.ObjectID, error)
}

// BidStore is the document-store capability the bid operations need.
type BidStore interface {
	Insert(ctx context.Context, doc models.Document) (primitive.ObjectID, error)
	// FindOne returns the bid placed by email on jobID, or nil when there is none.
	FindOne(ctx context.Context, email, jobID string) (models.Document, error)
	FindByBidder(ctx context.Context, email string) ([]models.Document, error)
	FindByBuyer(ctx context.Context, email string) ([]models.Document, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status interface{}) (models.UpdateResult, error)
	CountForJob(ctx context.Context, jobID string) (int64, error)
}
