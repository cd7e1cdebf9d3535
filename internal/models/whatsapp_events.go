package models

// WebhookPayload represents the overall structure of an event delivery from the
// WhatsApp Cloud API. Every level may be absent or empty; consumers must treat
// missing data as "nothing to ingest" rather than an error.
type WebhookPayload struct {
	Object string  `json:"object"` // e.g., "whatsapp_business_account"
	Entry  []Entry `json:"entry"`
}

// Entry represents one business-account entry in the webhook envelope.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change represents a single changed field within an entry.
type Change struct {
	Field string      `json:"field"` // e.g., "messages"
	Value ChangeValue `json:"value"`
}

// ChangeValue carries the actual message data of a change.
type ChangeValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Metadata         Metadata          `json:"metadata"`
	Contacts         []Contact         `json:"contacts"`
	Messages         []IncomingMessage `json:"messages"`
}

// Metadata identifies the receiving business number.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact carries the sender's profile information.
type Contact struct {
	WaID    string         `json:"wa_id"`
	Profile ContactProfile `json:"profile"`
}

// ContactProfile is the displayable profile of a contact.
type ContactProfile struct {
	Name string `json:"name"`
}

// IncomingMessage represents one message within a change value.
type IncomingMessage struct {
	ID        string       `json:"id"`
	From      string       `json:"from"`
	Type      string       `json:"type"`      // e.g., "text", "image"
	Timestamp string       `json:"timestamp"` // epoch seconds as string
	Text      *MessageText `json:"text,omitempty"`
}

// MessageText is the text body of a "text" type message.
type MessageText struct {
	Body string `json:"body"`
}

// InboundEvent is the extracted result of traversing a webhook payload: the
// first message of the first change of the first entry, together with the
// contact and metadata it arrived with.
type InboundEvent struct {
	Message  IncomingMessage
	Contact  *Contact // nil when the payload carried no contacts
	Metadata Metadata
}

// FirstMessage walks the payload defensively and returns the first message of
// the first change of the first entry. The second return is false when any
// level of the envelope is missing or empty.
func (p *WebhookPayload) FirstMessage() (*InboundEvent, bool) {
	if len(p.Entry) == 0 {
		return nil, false
	}
	entry := p.Entry[0]
	if len(entry.Changes) == 0 {
		return nil, false
	}
	value := entry.Changes[0].Value
	if len(value.Messages) == 0 {
		return nil, false
	}

	event := &InboundEvent{
		Message:  value.Messages[0],
		Metadata: value.Metadata,
	}
	if len(value.Contacts) > 0 {
		event.Contact = &value.Contacts[0]
	}
	return event, true
}
