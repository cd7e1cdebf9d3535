package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"whatsapp-relay-backend/internal/api"
	"whatsapp-relay-backend/internal/config"
	"whatsapp-relay-backend/internal/handlers"
	"whatsapp-relay-backend/internal/integrations/whatsapp"
	"whatsapp-relay-backend/internal/services"
	"whatsapp-relay-backend/internal/store/mongodb"
)

func main() {
	log.Println("Starting WhatsApp Relay Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Initialize MongoDB Connection
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	client, err := mongo.Connect(dbCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("FATAL: Unable to connect to MongoDB: %v", err)
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Printf("WARN: MongoDB disconnect failed: %v", err)
		}
	}()

	// Ping DB to verify connection
	if err := client.Ping(dbCtx, readpref.Primary()); err != nil {
		log.Fatalf("FATAL: Unable to ping MongoDB: %v", err)
	}
	log.Println("MongoDB connection established and pinged successfully.")

	// 3. Initialize Dependencies (Store, Services, Handlers)
	mongoStore := mongodb.NewMongoStore(client, cfg.DBName)
	if err := mongoStore.EnsureIndexes(dbCtx); err != nil {
		log.Fatalf("FATAL: Failed to ensure message indexes: %v", err)
	}
	log.Println("Mongo store initialized.")

	whatsappClient := whatsapp.NewClient(cfg.GraphAPIBaseURL, cfg.GraphAPIVersion, cfg.PhoneNumberID, cfg.AccessToken)
	log.Println("WhatsApp client initialized.")

	messageService := services.NewMessageService(mongoStore, whatsappClient, cfg.PhoneNumberID)
	log.Println("MessageService initialized.")

	webhookHandler := handlers.NewWebhookHandlers(messageService, cfg.VerifyToken)
	conversationHandler := handlers.NewConversationHandlers(messageService)
	sendHandler := handlers.NewSendHandlers(messageService)
	healthHandler := handlers.NewHealthHandlers(mongoStore)
	log.Println("Handlers initialized.")

	// 4. Setup Router & Inject Dependencies
	router := api.NewRouter(api.RouterDependencies{
		WebhookHandler:      webhookHandler,
		ConversationHandler: conversationHandler,
		SendHandler:         sendHandler,
		HealthHandler:       healthHandler,
	})
	log.Println("HTTP router configured.")

	// 5. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// Production hardening: Set timeouts to avoid Slowloris attacks
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel to listen for OS signals for graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	// Run server in a goroutine so it doesn't block
	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	// Wait for interrupt signal
	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	// Create a deadline context for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
	}

	log.Println("Server shutdown complete.")
}
