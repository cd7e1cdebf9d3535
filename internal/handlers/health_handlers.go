package handlers

import (
	"context"
	"net/http"
	"time"

	"whatsapp-relay-backend/internal/models"
	"whatsapp-relay-backend/internal/store"
	"whatsapp-relay-backend/pkg/httputil"
)

// HealthHandlers reports process and store health.
type HealthHandlers struct {
	store store.Store
}

// NewHealthHandlers creates a new HealthHandlers instance.
func NewHealthHandlers(s store.Store) *HealthHandlers {
	return &HealthHandlers{store: s}
}

// HandleHealth always answers 200; the mongodb field reflects whether the
// store responded to a short ping.
func (h *HealthHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	mongoState := "connected"
	if err := h.store.Ping(ctx); err != nil {
		mongoState = "disconnected"
	}

	httputil.RespondJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "ok",
		MongoDB:   mongoState,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
