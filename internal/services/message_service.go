package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"whatsapp-relay-backend/internal/integrations/whatsapp"
	"whatsapp-relay-backend/internal/models"
	"whatsapp-relay-backend/internal/store"
)

// ErrNoMessageID is returned by SendText when the Cloud API accepted the call
// but its response carried no message identifier. Nothing is persisted in that
// case; recording a send that may not have occurred would corrupt history.
var ErrNoMessageID = errors.New("whatsapp response contained no message id")

// SendClient is the outbound WhatsApp dependency of the service. The concrete
// implementation is whatsapp.Client; tests substitute a double.
type SendClient interface {
	SendText(ctx context.Context, to, body string) (*whatsapp.SendResponse, error)
}

// MessageService orchestrates ingest, query and send over the shared store.
type MessageService struct {
	store         store.Store
	sender        SendClient
	phoneNumberID string
}

// NewMessageService creates a MessageService instance.
func NewMessageService(s store.Store, sender SendClient, phoneNumberID string) *MessageService {
	return &MessageService{
		store:         s,
		sender:        sender,
		phoneNumberID: phoneNumberID,
	}
}

// IngestInbound extracts the first text message from a webhook payload and
// persists it. A payload with no usable message, or a non-text message, is not
// an error. Redelivered messages (duplicate id) are swallowed after logging.
func (s *MessageService) IngestInbound(ctx context.Context, payload *models.WebhookPayload) error {
	event, ok := payload.FirstMessage()
	if !ok {
		log.Println("[MessageService] Ingest: payload carried no message, nothing to do.")
		return nil
	}
	if event.Message.Type != "text" || event.Message.Text == nil {
		log.Printf("[MessageService] Ingest: ignoring non-text message type %q.", event.Message.Type)
		return nil
	}

	fromName := "Unknown"
	if event.Contact != nil && event.Contact.Profile.Name != "" {
		fromName = event.Contact.Profile.Name
	}

	msg := &models.Message{
		MessageID:      event.Message.ID,
		ConversationID: event.Message.From,
		From:           event.Message.From,
		FromName:       fromName,
		To:             event.Metadata.PhoneNumberID,
		Body:           event.Message.Text.Body,
		Timestamp:      parseEpochSeconds(event.Message.Timestamp),
		Direction:      models.DirectionIncoming,
		Status:         "received",
	}

	if err := s.store.InsertMessage(ctx, msg); err != nil {
		if errors.Is(err, store.ErrDuplicateMessage) {
			log.Printf("[MessageService] Ingest: message %s already stored, skipping.", msg.MessageID)
			return nil
		}
		return fmt.Errorf("persisting inbound message %s: %w", msg.MessageID, err)
	}

	log.Printf("[MessageService] Ingest: stored message %s from %s.", msg.MessageID, msg.ConversationID)
	return nil
}

// SendText sends a text message through the Cloud API and persists the
// confirmed result. The returned id is the platform-assigned message id.
func (s *MessageService) SendText(ctx context.Context, to, body string) (string, *whatsapp.SendResponse, error) {
	correlationID := uuid.New()
	log.Printf("[MessageService] Send %s: dispatching text to %s.", correlationID, to)

	resp, err := s.sender.SendText(ctx, to, body)
	if err != nil {
		return "", nil, err
	}

	messageID := resp.MessageID()
	if messageID == "" {
		log.Printf("[MessageService] Send %s: response carried no message id, not persisting.", correlationID)
		return "", nil, ErrNoMessageID
	}

	msg := &models.Message{
		MessageID:      messageID,
		ConversationID: to,
		From:           s.phoneNumberID,
		FromName:       "Business",
		To:             to,
		Body:           body,
		Timestamp:      time.Now().UTC(),
		Direction:      models.DirectionOutgoing,
		Status:         "sent",
	}

	if err := s.store.InsertMessage(ctx, msg); err != nil {
		// The platform confirmed the send; persistence is best-effort here and
		// the caller still gets a success with the platform's message id.
		log.Printf("ERROR [MessageService] Send %s: message %s sent but not persisted: %v", correlationID, messageID, err)
	} else {
		log.Printf("[MessageService] Send %s: stored outgoing message %s.", correlationID, messageID)
	}

	return messageID, resp, nil
}

// ListConversations returns the aggregated conversation summaries.
func (s *MessageService) ListConversations(ctx context.Context) ([]models.ConversationSummary, error) {
	return s.store.AggregateConversations(ctx)
}

// ListMessages returns one conversation's messages in chronological order.
func (s *MessageService) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	return s.store.ListByConversation(ctx, conversationID)
}

// parseEpochSeconds converts the platform's epoch-seconds string to a UTC
// time, falling back to ingest time when the field is absent or malformed.
func parseEpochSeconds(raw string) time.Time {
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("[MessageService] Unparseable timestamp %q, using ingest time.", raw)
		return time.Now().UTC()
	}
	return time.Unix(secs, 0).UTC()
}
