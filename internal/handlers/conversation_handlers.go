package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"whatsapp-relay-backend/internal/models"
	"whatsapp-relay-backend/internal/services"
	"whatsapp-relay-backend/pkg/httputil"
)

// ConversationHandlers serves the frontend's read-only conversation queries.
type ConversationHandlers struct {
	messageService *services.MessageService
}

// NewConversationHandlers creates a new ConversationHandlers instance.
func NewConversationHandlers(ms *services.MessageService) *ConversationHandlers {
	return &ConversationHandlers{
		messageService: ms,
	}
}

// HandleListConversations returns one aggregated summary per conversation,
// most recently active first.
func (h *ConversationHandlers) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.messageService.ListConversations(r.Context())
	if err != nil {
		log.Printf("ERROR [ConversationHandlers] Listing conversations: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to fetch conversations")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.ConversationsResponse{
		Success:       true,
		Conversations: summaries,
	})
}

// HandleListMessages returns one conversation's messages in chronological
// order. An unknown conversation yields an empty list, not an error.
func (h *ConversationHandlers) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	messages, err := h.messageService.ListMessages(r.Context(), conversationID)
	if err != nil {
		log.Printf("ERROR [ConversationHandlers] Listing messages for %s: %v", conversationID, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.MessagesResponse{
		Success:  true,
		Messages: messages,
	})
}
