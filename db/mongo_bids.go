package db

import (
	"context"
	"errors"
	"fmt"

	"solosphere/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ BidStore = (*MongoBidStore)(nil)

// MongoBidStore keeps bids in a MongoDB collection. There is deliberately no
// unique index on (email, jobId); duplicates are screened by a prior lookup.
type MongoBidStore struct {
	col *mongo.Collection
}

func NewMongoBidStore(col *mongo.Collection) *MongoBidStore {
	return &MongoBidStore{col: col}
}

func (s *MongoBidStore) Insert(ctx context.Context, doc models.Document) (primitive.ObjectID, error) {
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert bid: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("insert bid: unexpected id type %T", res.InsertedID)
	}
	return id, nil
}

func (s *MongoBidStore) FindOne(ctx context.Context, email, jobID string) (models.Document, error) {
	var doc models.Document
	err := s.col.FindOne(ctx, bson.M{models.FieldEmail: email, models.FieldJobID: jobID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find bid: %w", err)
	}
	return doc, nil
}

func (s *MongoBidStore) FindByBidder(ctx context.Context, email string) ([]models.Document, error) {
	return s.find(ctx, bson.M{models.FieldEmail: email})
}

func (s *MongoBidStore) FindByBuyer(ctx context.Context, email string) ([]models.Document, error) {
	return s.find(ctx, bson.M{models.FieldBidBuyer: email})
}

func (s *MongoBidStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status interface{}) (models.UpdateResult, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{models.FieldID: id},
		bson.M{"$set": bson.M{models.FieldStatus: status}},
	)
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("update bid %s status: %w", id.Hex(), err)
	}
	return toUpdateResult(res), nil
}

func (s *MongoBidStore) CountForJob(ctx context.Context, jobID string) (int64, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{models.FieldJobID: jobID})
	if err != nil {
		return 0, fmt.Errorf("count bids for job %s: %w", jobID, err)
	}
	return n, nil
}

func (s *MongoBidStore) find(ctx context.Context, filter bson.M) ([]models.Document, error) {
	cursor, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query bids: %w", err)
	}
	docs, err := decodeAll(ctx, cursor)
	if err != nil {
		return nil, fmt.Errorf("decode bids: %w", err)
	}
	return docs, nil
}
