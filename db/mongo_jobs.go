package db

import (
	"context"
	"errors"
	"fmt"

	"solosphere/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ JobStore = (*MongoJobStore)(nil)

// MongoJobStore keeps jobs in a MongoDB collection.
type MongoJobStore struct {
	col *mongo.Collection
}

func NewMongoJobStore(col *mongo.Collection) *MongoJobStore {
	return &MongoJobStore{col: col}
}

func (s *MongoJobStore) Insert(ctx context.Context, doc models.Document) (primitive.ObjectID, error) {
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert job: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("insert job: unexpected id type %T", res.InsertedID)
	}
	return id, nil
}

func (s *MongoJobStore) FindAll(ctx context.Context) ([]models.Document, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoJobStore) FindByOwnerEmail(ctx context.Context, email string) ([]models.Document, error) {
	return s.find(ctx, bson.M{models.FieldBuyerEmail: email})
}

func (s *MongoJobStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.Document, error) {
	var doc models.Document
	err := s.col.FindOne(ctx, bson.M{models.FieldID: id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find job %s: %w", id.Hex(), err)
	}
	return doc, nil
}

func (s *MongoJobStore) DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.col.DeleteOne(ctx, bson.M{models.FieldID: id})
	if err != nil {
		return 0, fmt.Errorf("delete job %s: %w", id.Hex(), err)
	}
	return res.DeletedCount, nil
}

func (s *MongoJobStore) UpsertByID(ctx context.Context, id primitive.ObjectID, fields models.Document) (models.UpdateResult, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{models.FieldID: id},
		bson.M{"$set": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("upsert job %s: %w", id.Hex(), err)
	}
	return toUpdateResult(res), nil
}

func (s *MongoJobStore) Search(ctx context.Context, pattern, category string) ([]models.Document, error) {
	filter := bson.M{}
	if pattern != "" {
		filter[models.FieldTitle] = bson.M{"$regex": pattern, "$options": "i"}
	}
	if category != "" {
		filter[models.FieldCategory] = category
	}
	return s.find(ctx, filter)
}

func (s *MongoJobStore) IncrementBidCount(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{models.FieldID: id},
		bson.M{"$inc": bson.M{models.FieldBidCount: 1}},
	)
	if err != nil {
		return 0, fmt.Errorf("increment bid count on job %s: %w", id.Hex(), err)
	}
	return res.MatchedCount, nil
}

func (s *MongoJobStore) SetBidCount(ctx context.Context, id primitive.ObjectID, count int64) (int64, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{models.FieldID: id},
		bson.M{"$set": bson.M{models.FieldBidCount: count}},
	)
	if err != nil {
		return 0, fmt.Errorf("set bid count on job %s: %w", id.Hex(), err)
	}
	return res.MatchedCount, nil
}

func (s *MongoJobStore) IDs(ctx context.Context) ([]primitive.ObjectID, error) {
	cursor, err := s.col.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{models.FieldID: 1}))
	if err != nil {
		return nil, fmt.Errorf("list job ids: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []primitive.ObjectID
	for cursor.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			// Jobs upserted with a foreign id type are skipped.
			continue
		}
		ids = append(ids, row.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list job ids: %w", err)
	}
	return ids, nil
}

func (s *MongoJobStore) find(ctx context.Context, filter bson.M) ([]models.Document, error) {
	cursor, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	docs, err := decodeAll(ctx, cursor)
	if err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}
	return docs, nil
}

func toUpdateResult(res *mongo.UpdateResult) models.UpdateResult {
	out := models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		out.UpsertedID = &id
	}
	return out
}
