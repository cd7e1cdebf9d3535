package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"whatsapp-relay-backend/internal/models"
	"whatsapp-relay-backend/internal/services"
)

// WebhookHandlers handles the WhatsApp platform's webhook calls: the one-time
// subscription verification and subsequent event deliveries.
type WebhookHandlers struct {
	messageService *services.MessageService
	verifyToken    string
}

// NewWebhookHandlers creates a new WebhookHandlers instance.
func NewWebhookHandlers(ms *services.MessageService, verifyToken string) *WebhookHandlers {
	return &WebhookHandlers{
		messageService: ms,
		verifyToken:    verifyToken,
	}
}

// HandleVerify answers the platform's subscription handshake. The platform
// sends hub.mode, hub.challenge and hub.verify_token; a matching token must be
// answered with the raw challenge string.
func (h *WebhookHandlers) HandleVerify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	challenge := r.URL.Query().Get("hub.challenge")
	token := r.URL.Query().Get("hub.verify_token")

	if mode == "subscribe" && token == h.verifyToken {
		log.Println("[WebhookHandlers] Webhook verified successfully.")
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	log.Printf("[WebhookHandlers] Webhook verification rejected (mode=%q).", mode)
	w.WriteHeader(http.StatusForbidden)
}

// HandleEvent ingests an inbound event delivery. The platform interprets any
// non-2xx as delivery failure and redelivers, so this handler acknowledges
// with 200 regardless of the internal outcome.
func (h *WebhookHandlers) HandleEvent(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload models.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Printf("[WebhookHandlers] Undecodable webhook payload, acknowledging anyway: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.messageService.IngestInbound(r.Context(), &payload); err != nil {
		log.Printf("ERROR [WebhookHandlers] Ingest failed, acknowledging anyway: %v", err)
	}

	w.WriteHeader(http.StatusOK)
}
