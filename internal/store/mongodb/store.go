package mongodb

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"whatsapp-relay-backend/internal/models"
	"whatsapp-relay-backend/internal/store"
)

const messagesCollection = "messages"

// Compile-time check to ensure MongoStore implements store.Store
var _ store.Store = (*MongoStore)(nil)

// MongoStore is the MongoDB-backed implementation of store.Store. A single
// instance is shared by all request handlers; uniqueness of messageId is
// enforced by a unique index rather than application-level locking.
type MongoStore struct {
	client   *mongo.Client
	messages *mongo.Collection
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{
		client:   client,
		messages: client.Database(dbName).Collection(messagesCollection),
	}
}

// EnsureIndexes creates the indexes the query contracts rely on: a unique
// index on messageId (the dedup key) and a compound index supporting the
// per-conversation chronological listing.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "messageId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "timestamp", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("creating message indexes: %w", err)
	}
	log.Println("[MongoStore] Message indexes ensured.")
	return nil
}

// InsertMessage persists a message, translating the driver's duplicate-key
// error into store.ErrDuplicateMessage.
func (s *MongoStore) InsertMessage(ctx context.Context, msg *models.Message) error {
	_, err := s.messages.InsertOne(ctx, msg)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicateMessage
		}
		return fmt.Errorf("database error inserting message %s: %w", msg.MessageID, err)
	}
	return nil
}

// ListByConversation returns a conversation's messages in ascending timestamp order.
func (s *MongoStore) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := s.messages.Find(ctx, bson.M{"conversationId": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("database error listing messages for %s: %w", conversationID, err)
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("database error decoding messages for %s: %w", conversationID, err)
	}
	return messages, nil
}

// AggregateConversations groups messages by conversationId and summarizes each
// group. Messages are sorted by timestamp ascending before grouping so the
// $last accumulators and the incoming count are taken from the same pass over
// the same group.
func (s *MongoStore) AggregateConversations(ctx context.Context) ([]models.ConversationSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: 1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$conversationId"},
			{Key: "lastMessageBody", Value: bson.D{{Key: "$last", Value: "$body"}}},
			{Key: "lastMessageTime", Value: bson.D{{Key: "$last", Value: "$timestamp"}}},
			{Key: "fromName", Value: bson.D{{Key: "$last", Value: "$fromName"}}},
			{Key: "incomingCount", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{
					bson.D{{Key: "$eq", Value: bson.A{"$direction", models.DirectionIncoming}}},
					1,
					0,
				}},
			}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastMessageTime", Value: -1}}}},
	}

	cursor, err := s.messages.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("database error aggregating conversations: %w", err)
	}
	defer cursor.Close(ctx)

	summaries := []models.ConversationSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("database error decoding conversation summaries: %w", err)
	}
	return summaries, nil
}

// Ping verifies the database connection is alive.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}
