package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MessagesCollectionName is the collection holding exchange threads.
const MessagesCollectionName = "exchange_messages"

// MongoClient wraps mongo.Client and exposes collections.
type MongoClient struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoClient connects to MongoDB and pings the primary.
func NewMongoClient(ctx context.Context, uri, database string) (*MongoClient, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoClient{
		client: client,
		db:     client.Database(database),
	}, nil
}

// MessagesCollection returns the exchange thread collection.
func (c *MongoClient) MessagesCollection() *mongo.Collection {
	return c.db.Collection(MessagesCollectionName)
}

// CreateIndexes creates the thread lookup index.
func (c *MongoClient) CreateIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "exchange_id", Value: 1}, {Key: "created_at", Value: 1}},
		Options: options.Index().SetName("exchange_id_created_at"),
	}
	if _, err := c.MessagesCollection().Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create message index: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (c *MongoClient) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
