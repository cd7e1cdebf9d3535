package store

import (
	"context"
	"errors"

	"whatsapp-relay-backend/internal/models"
)

// ErrDuplicateMessage is returned by InsertMessage when a message with the same
// messageId already exists. Handlers match it with errors.Is instead of
// inspecting driver-specific error codes.
var ErrDuplicateMessage = errors.New("duplicate message id")

// Store defines the interface for message persistence.
// This allows for mocking in tests and potential DB backend switching.
type Store interface {
	// InsertMessage persists a new message. Returns ErrDuplicateMessage when a
	// message with the same messageId is already stored; prior state is left
	// untouched in that case.
	InsertMessage(ctx context.Context, msg *models.Message) error

	// ListByConversation returns all messages of one conversation ordered by
	// timestamp ascending. An unknown conversation yields an empty slice.
	ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error)

	// AggregateConversations returns one summary per distinct conversationId,
	// ordered by the latest message timestamp descending.
	AggregateConversations(ctx context.Context) ([]models.ConversationSummary, error)

	// Ping reports whether the underlying database is reachable.
	Ping(ctx context.Context) error
}
