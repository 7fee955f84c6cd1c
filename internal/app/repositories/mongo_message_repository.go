package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/skillswap/internal/app/models"
	"github.com/yigit/skillswap/internal/pkg/logger"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoMessageRepository stores exchange threads in a MongoDB collection
type MongoMessageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository creates a message store over coll
func NewMongoMessageRepository(coll *mongo.Collection) *MongoMessageRepository {
	return &MongoMessageRepository{coll: coll}
}

// Append adds a message document
func (r *MongoMessageRepository) Append(ctx context.Context, msg *models.Message) error {
	prepareMessage(msg)
	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		logger.Error().Err(err).Str("exchangeID", msg.ExchangeID).Msg("Error inserting message document")
		return fmt.Errorf("error appending message: %w", err)
	}
	return nil
}

// ListByExchange returns the thread oldest first.
func (r *MongoMessageRepository) ListByExchange(ctx context.Context, exchangeID string) ([]*models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"exchange_id": exchangeID}, opts)
	if err != nil {
		logger.Error().Err(err).Str("exchangeID", exchangeID).Msg("Error querying message documents")
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := make([]*models.Message, 0)
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("error decoding messages: %w", err)
	}
	return messages, nil
}

// Last returns the newest message, or nil when the thread is empty.
func (r *MongoMessageRepository) Last(ctx context.Context, exchangeID string) (*models.Message, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	msg := &models.Message{}
	err := r.coll.FindOne(ctx, bson.M{"exchange_id": exchangeID}, opts).Decode(msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving last message: %w", err)
	}
	return msg, nil
}

// DeleteByExchange removes every message of the thread.
func (r *MongoMessageRepository) DeleteByExchange(ctx context.Context, exchangeID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"exchange_id": exchangeID})
	if err != nil {
		logger.Error().Err(err).Str("exchangeID", exchangeID).Msg("Error deleting message documents")
		return 0, fmt.Errorf("error clearing thread: %w", err)
	}
	return res.DeletedCount, nil
}
