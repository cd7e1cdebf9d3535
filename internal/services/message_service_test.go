package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"whatsapp-relay-backend/internal/integrations/whatsapp"
	"whatsapp-relay-backend/internal/models"
	"whatsapp-relay-backend/internal/store"
)

type fakeStore struct {
	messages  []models.Message
	insertErr error
	listErr   error
	aggErr    error
	summaries []models.ConversationSummary
}

func (f *fakeStore) InsertMessage(_ context.Context, msg *models.Message) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, m := range f.messages {
		if m.MessageID == msg.MessageID {
			return store.ErrDuplicateMessage
		}
	}
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeStore) ListByConversation(_ context.Context, conversationID string) ([]models.Message, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []models.Message{}
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) AggregateConversations(_ context.Context) ([]models.ConversationSummary, error) {
	if f.aggErr != nil {
		return nil, f.aggErr
	}
	return f.summaries, nil
}

func (f *fakeStore) Ping(_ context.Context) error { return nil }

type fakeSender struct {
	resp     *whatsapp.SendResponse
	err      error
	calls    int
	lastTo   string
	lastBody string
}

func (f *fakeSender) SendText(_ context.Context, to, body string) (*whatsapp.SendResponse, error) {
	f.calls++
	f.lastTo = to
	f.lastBody = body
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func textPayload(id, from, name, body, ts string) *models.WebhookPayload {
	return &models.WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []models.Entry{{
			ID: "entry-1",
			Changes: []models.Change{{
				Field: "messages",
				Value: models.ChangeValue{
					Metadata: models.Metadata{PhoneNumberID: "business-42"},
					Contacts: []models.Contact{{WaID: from, Profile: models.ContactProfile{Name: name}}},
					Messages: []models.IncomingMessage{{
						ID:        id,
						From:      from,
						Type:      "text",
						Timestamp: ts,
						Text:      &models.MessageText{Body: body},
					}},
				},
			}},
		}},
	}
}

func sendResponse(id string) *whatsapp.SendResponse {
	raw := `{"messaging_product":"whatsapp","messages":[{"id":"` + id + `"}]}`
	var resp whatsapp.SendResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		panic(err)
	}
	resp.Raw = json.RawMessage(raw)
	return &resp
}

func TestIngestInboundStoresTextMessage(t *testing.T) {
	fs := &fakeStore{}
	svc := NewMessageService(fs, &fakeSender{}, "business-42")

	payload := textPayload("wamid.1", "15551234567", "Alice", "hi", "1700000000")
	if err := svc.IngestInbound(context.Background(), payload); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if len(fs.messages) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(fs.messages))
	}
	got := fs.messages[0]
	if got.MessageID != "wamid.1" {
		t.Errorf("messageId = %q", got.MessageID)
	}
	if got.ConversationID != "15551234567" {
		t.Errorf("conversationId = %q, want sender identifier", got.ConversationID)
	}
	if got.From != "15551234567" || got.To != "business-42" {
		t.Errorf("from/to = %q/%q", got.From, got.To)
	}
	if got.FromName != "Alice" {
		t.Errorf("fromName = %q", got.FromName)
	}
	if got.Body != "hi" {
		t.Errorf("body = %q", got.Body)
	}
	if !got.Timestamp.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Errorf("timestamp = %v, want epoch 1700000000", got.Timestamp)
	}
	if got.Direction != models.DirectionIncoming || got.Status != "received" {
		t.Errorf("direction/status = %q/%q", got.Direction, got.Status)
	}
}

func TestIngestInboundDefaultsFromName(t *testing.T) {
	fs := &fakeStore{}
	svc := NewMessageService(fs, &fakeSender{}, "business-42")

	payload := textPayload("wamid.2", "15551234567", "", "hello", "1700000001")
	payload.Entry[0].Changes[0].Value.Contacts = nil

	if err := svc.IngestInbound(context.Background(), payload); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if fs.messages[0].FromName != "Unknown" {
		t.Errorf("fromName = %q, want Unknown", fs.messages[0].FromName)
	}
}

func TestIngestInboundIgnoresNonTextMessage(t *testing.T) {
	fs := &fakeStore{}
	svc := NewMessageService(fs, &fakeSender{}, "business-42")

	payload := textPayload("wamid.3", "15551234567", "Alice", "", "1700000002")
	payload.Entry[0].Changes[0].Value.Messages[0].Type = "image"
	payload.Entry[0].Changes[0].Value.Messages[0].Text = nil

	if err := svc.IngestInbound(context.Background(), payload); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if len(fs.messages) != 0 {
		t.Fatalf("expected no stored message for image type, got %d", len(fs.messages))
	}
}

func TestIngestInboundIgnoresEmptyEnvelope(t *testing.T) {
	fs := &fakeStore{}
	svc := NewMessageService(fs, &fakeSender{}, "business-42")

	for _, payload := range []*models.WebhookPayload{
		{},
		{Entry: []models.Entry{{}}},
		{Entry: []models.Entry{{Changes: []models.Change{{}}}}},
	} {
		if err := svc.IngestInbound(context.Background(), payload); err != nil {
			t.Fatalf("ingest of empty envelope failed: %v", err)
		}
	}
	if len(fs.messages) != 0 {
		t.Fatalf("expected no stored messages, got %d", len(fs.messages))
	}
}

func TestIngestInboundSwallowsDuplicate(t *testing.T) {
	fs := &fakeStore{}
	svc := NewMessageService(fs, &fakeSender{}, "business-42")

	payload := textPayload("wamid.4", "15551234567", "Alice", "hi", "1700000003")
	if err := svc.IngestInbound(context.Background(), payload); err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	if err := svc.IngestInbound(context.Background(), payload); err != nil {
		t.Fatalf("redelivered ingest must not error, got: %v", err)
	}
	if len(fs.messages) != 1 {
		t.Fatalf("expected exactly 1 record after redelivery, got %d", len(fs.messages))
	}
}

func TestIngestInboundPropagatesStoreFailure(t *testing.T) {
	fs := &fakeStore{insertErr: errors.New("connection reset")}
	svc := NewMessageService(fs, &fakeSender{}, "business-42")

	payload := textPayload("wamid.5", "15551234567", "Alice", "hi", "1700000004")
	if err := svc.IngestInbound(context.Background(), payload); err == nil {
		t.Fatal("expected error on store failure")
	}
}

func TestIngestInboundBadTimestampFallsBackToNow(t *testing.T) {
	fs := &fakeStore{}
	svc := NewMessageService(fs, &fakeSender{}, "business-42")

	before := time.Now().UTC()
	payload := textPayload("wamid.6", "15551234567", "Alice", "hi", "not-a-number")
	if err := svc.IngestInbound(context.Background(), payload); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	got := fs.messages[0].Timestamp
	if got.Before(before.Add(-time.Second)) || got.After(time.Now().UTC().Add(time.Second)) {
		t.Errorf("timestamp %v not near ingest time", got)
	}
}

func TestSendTextPersistsConfirmedMessage(t *testing.T) {
	fs := &fakeStore{}
	sender := &fakeSender{resp: sendResponse("wamid.out1")}
	svc := NewMessageService(fs, sender, "business-42")

	id, resp, err := svc.SendText(context.Background(), "15551234567", "hello there")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if id != "wamid.out1" {
		t.Errorf("message id = %q", id)
	}
	if resp == nil || resp.MessageID() != "wamid.out1" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if sender.lastTo != "15551234567" || sender.lastBody != "hello there" {
		t.Errorf("sender called with %q/%q", sender.lastTo, sender.lastBody)
	}

	if len(fs.messages) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(fs.messages))
	}
	got := fs.messages[0]
	if got.MessageID != "wamid.out1" || got.ConversationID != "15551234567" {
		t.Errorf("stored messageId/conversationId = %q/%q", got.MessageID, got.ConversationID)
	}
	if got.From != "business-42" || got.To != "15551234567" {
		t.Errorf("stored from/to = %q/%q", got.From, got.To)
	}
	if got.Direction != models.DirectionOutgoing || got.Status != "sent" {
		t.Errorf("stored direction/status = %q/%q", got.Direction, got.Status)
	}
}

func TestSendTextRefusesResponseWithoutMessageID(t *testing.T) {
	fs := &fakeStore{}
	sender := &fakeSender{resp: &whatsapp.SendResponse{Raw: json.RawMessage(`{}`)}}
	svc := NewMessageService(fs, sender, "business-42")

	_, _, err := svc.SendText(context.Background(), "15551234567", "hello")
	if !errors.Is(err, ErrNoMessageID) {
		t.Fatalf("expected ErrNoMessageID, got %v", err)
	}
	if len(fs.messages) != 0 {
		t.Fatalf("nothing must be persisted without a message id, got %d records", len(fs.messages))
	}
}

func TestSendTextPropagatesSenderError(t *testing.T) {
	fs := &fakeStore{}
	apiErr := &whatsapp.APIError{StatusCode: 401, Body: json.RawMessage(`{"error":"bad token"}`)}
	svc := NewMessageService(fs, &fakeSender{err: apiErr}, "business-42")

	_, _, err := svc.SendText(context.Background(), "15551234567", "hello")
	var got *whatsapp.APIError
	if !errors.As(err, &got) || got.StatusCode != 401 {
		t.Fatalf("expected APIError 401, got %v", err)
	}
	if len(fs.messages) != 0 {
		t.Fatalf("nothing must be persisted on send failure, got %d records", len(fs.messages))
	}
}

func TestSendTextSucceedsWhenPersistenceFails(t *testing.T) {
	fs := &fakeStore{insertErr: errors.New("connection reset")}
	svc := NewMessageService(fs, &fakeSender{resp: sendResponse("wamid.out2")}, "business-42")

	id, _, err := svc.SendText(context.Background(), "15551234567", "hello")
	if err != nil {
		t.Fatalf("confirmed send must succeed despite persistence failure, got %v", err)
	}
	if id != "wamid.out2" {
		t.Errorf("message id = %q", id)
	}
}

func TestListMessagesPassThrough(t *testing.T) {
	fs := &fakeStore{messages: []models.Message{
		{MessageID: "a", ConversationID: "123"},
		{MessageID: "b", ConversationID: "456"},
	}}
	svc := NewMessageService(fs, &fakeSender{}, "business-42")

	msgs, err := svc.ListMessages(context.Background(), "123")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].MessageID != "a" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}
