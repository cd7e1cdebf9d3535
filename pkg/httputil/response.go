package httputil

import (
	"encoding/json"
	"log"
	"net/http"

	"whatsapp-relay-backend/internal/models"
)

// RespondJSON writes a JSON response with the given status code and payload.
func RespondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
		// Can't write header again here, just log the error
	}
}

// RespondError writes a {success:false, error} envelope with the given status.
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	RespondJSON(w, statusCode, models.ErrorResponse{Success: false, Error: message})
}

// RespondErrorDetails writes a failure envelope carrying an upstream error body.
func RespondErrorDetails(w http.ResponseWriter, statusCode int, message string, details json.RawMessage) {
	RespondJSON(w, statusCode, models.ErrorResponse{Success: false, Error: message, Details: details})
}
