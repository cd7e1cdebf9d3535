package models

import (
	"encoding/json"
)

// --- Request Structs ---

// SendMessageRequest defines the expected body for the send-message endpoint.
type SendMessageRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// --- Response Structs ---

// ErrorResponse is the failure envelope returned to the frontend.
type ErrorResponse struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
}

// ConversationsResponse is the success envelope for the conversation listing.
type ConversationsResponse struct {
	Success       bool                  `json:"success"`
	Conversations []ConversationSummary `json:"conversations"`
}

// MessagesResponse is the success envelope for a per-conversation message listing.
type MessagesResponse struct {
	Success  bool      `json:"success"`
	Messages []Message `json:"messages"`
}

// SendMessageResponse is the success envelope for the send-message endpoint.
// WhatsAppResponse embeds the platform's raw send API response.
type SendMessageResponse struct {
	Success          bool            `json:"success"`
	Message          string          `json:"message"`
	MessageID        string          `json:"messageId"`
	WhatsAppResponse json.RawMessage `json:"whatsappResponse"`
}

// HealthResponse reports process and store health.
type HealthResponse struct {
	Status    string `json:"status"`
	MongoDB   string `json:"mongodb"`
	Timestamp string `json:"timestamp"`
}
