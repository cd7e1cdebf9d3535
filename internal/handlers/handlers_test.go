package handlers

import (
	"context"
	"encoding/json"

	"whatsapp-relay-backend/internal/integrations/whatsapp"
	"whatsapp-relay-backend/internal/models"
	"whatsapp-relay-backend/internal/services"
	"whatsapp-relay-backend/internal/store"
)

// fakeStore is an in-memory store.Store double shared by the handler tests.
type fakeStore struct {
	messages  []models.Message
	insertErr error
	listErr   error
	aggErr    error
	summaries []models.ConversationSummary
	pingErr   error
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

func (f *fakeStore) Ping(_ context.Context) error { return f.pingErr }

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

func newTestService(fs *fakeStore, sender *fakeSender) *services.MessageService {
	return services.NewMessageService(fs, sender, "business-42")
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

// inboundTextEvent is a minimal valid webhook body carrying one text message.
func inboundTextEvent(id, from, name, body, ts string) string {
	payload := map[string]any{
		"object": "whatsapp_business_account",
		"entry": []any{map[string]any{
			"id": "entry-1",
			"changes": []any{map[string]any{
				"field": "messages",
				"value": map[string]any{
					"messaging_product": "whatsapp",
					"metadata":          map[string]any{"phone_number_id": "business-42"},
					"contacts":          []any{map[string]any{"wa_id": from, "profile": map[string]any{"name": name}}},
					"messages": []any{map[string]any{
						"id":        id,
						"from":      from,
						"type":      "text",
						"timestamp": ts,
						"text":      map[string]any{"body": body},
					}},
				},
			}},
		}},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return string(encoded)
}
