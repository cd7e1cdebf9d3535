package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"whatsapp-relay-backend/internal/integrations/whatsapp"
	"whatsapp-relay-backend/internal/models"
	"whatsapp-relay-backend/internal/services"
	"whatsapp-relay-backend/pkg/httputil"
)

// SendHandlers handles operator-authored outbound messages.
type SendHandlers struct {
	messageService *services.MessageService
}

// NewSendHandlers creates a new SendHandlers instance.
func NewSendHandlers(ms *services.MessageService) *SendHandlers {
	return &SendHandlers{
		messageService: ms,
	}
}

// HandleSendMessage validates the request, forwards the text through the Cloud
// API and reports the platform-assigned message id. Upstream failures are
// propagated with their status and body; no retry is attempted here.
func (h *SendHandlers) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.To == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Missing required field: to")
		return
	}
	if req.Message == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Missing required field: message")
		return
	}

	messageID, resp, err := h.messageService.SendText(r.Context(), req.To, req.Message)
	if err != nil {
		var apiErr *whatsapp.APIError
		switch {
		case errors.As(err, &apiErr):
			log.Printf("ERROR [SendHandlers] WhatsApp API rejected send to %s: status %d", req.To, apiErr.StatusCode)
			httputil.RespondErrorDetails(w, apiErr.StatusCode, "WhatsApp API error", apiErr.Body)
		case errors.Is(err, services.ErrNoMessageID):
			log.Printf("ERROR [SendHandlers] Send to %s returned no message id.", req.To)
			httputil.RespondError(w, http.StatusInternalServerError, "WhatsApp response missing message id")
		default:
			log.Printf("ERROR [SendHandlers] Send to %s failed: %v", req.To, err)
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to send message")
		}
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.SendMessageResponse{
		Success:          true,
		Message:          "Message sent",
		MessageID:        messageID,
		WhatsAppResponse: resp.Raw,
	})
}
