package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"whatsapp-relay-backend/internal/handlers"
)

// RouterDependencies holds all the dependencies required by the router setup.
type RouterDependencies struct {
	WebhookHandler      *handlers.WebhookHandlers
	ConversationHandler *handlers.ConversationHandlers
	SendHandler         *handlers.SendHandlers
	HealthHandler       *handlers.HealthHandlers
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)                 // Inject request ID into context
	r.Use(middleware.RealIP)                    // Use X-Forwarded-For or X-Real-IP
	r.Use(middleware.Logger)                    // Log requests
	r.Use(middleware.Recoverer)                 // Recover from panics, return 500
	r.Use(middleware.Timeout(60 * time.Second)) // Set a request timeout

	// --- CORS Configuration ---
	// Adjust AllowedOrigins for your frontend deployment(s)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173", "https://*.vercel.app"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Platform Webhook Routes ---
	// These must be public: the platform calls them directly. The verify
	// handshake secures the subscription; event deliveries are acknowledged
	// unconditionally.
	r.Get("/", deps.WebhookHandler.HandleVerify)
	r.Post("/", deps.WebhookHandler.HandleEvent)

	r.Get("/health", deps.HealthHandler.HandleHealth)

	// --- Frontend API Routes ---
	r.Route("/api", func(r chi.Router) {
		r.Get("/conversations", deps.ConversationHandler.HandleListConversations)
		r.Get("/messages/{conversationID}", deps.ConversationHandler.HandleListMessages)
		r.Post("/send-message", deps.SendHandler.HandleSendMessage)
	})

	return r
}
