package db

import (
	"context"
	"fmt"
	"time"

	"solosphere/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	JobsCollection = "jobs"
	BidsCollection = "bids"
)

// ConnectMongoDB establishes a connection to MongoDB
// Returns a MongoDB client that should be deferred to close
func ConnectMongoDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1).SetStrict(true).SetDeprecationErrors(true)).
		// Embedded documents decode as maps so they render as JSON objects.
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	// Verify connection
	err = client.Ping(ctx, nil)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

// DisconnectMongoDB closes the MongoDB connection
func DisconnectMongoDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return client.Disconnect(ctx)
}

// GetJobsCollection returns the jobs collection from MongoDB
func GetJobsCollection(client *mongo.Client, database string) *mongo.Collection {
	return client.Database(database).Collection(JobsCollection)
}

// GetBidsCollection returns the bids collection from MongoDB
func GetBidsCollection(client *mongo.Client, database string) *mongo.Collection {
	return client.Database(database).Collection(BidsCollection)
}

// decodeAll drains cursor into documents. The result is never nil so an
// empty match encodes as [] rather than null.
func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]models.Document, error) {
	defer cursor.Close(ctx)

	docs := []models.Document{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return docs, nil
}
