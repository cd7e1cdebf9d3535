package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort        string
	VerifyToken     string
	MongoURI        string
	DBName          string
	PhoneNumberID   string
	AccessToken     string
	GraphAPIBaseURL string
	GraphAPIVersion string
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
		// Don't fail if .env is not present, might be in production
	}

	port := getEnv("PORT", "3000")

	verifyToken := getEnv("VERIFY_TOKEN", "")
	if verifyToken == "" {
		log.Fatal("FATAL: VERIFY_TOKEN environment variable is not set.")
	}

	mongoURI := getEnv("MONGODB_URI", "")
	if mongoURI == "" {
		log.Fatal("FATAL: MONGODB_URI environment variable is not set.")
	}

	phoneNumberID := getEnv("WHATSAPP_PHONE_NUMBER_ID", "")
	if phoneNumberID == "" {
		log.Fatal("FATAL: WHATSAPP_PHONE_NUMBER_ID environment variable is not set.")
	}

	accessToken := getEnv("WHATSAPP_ACCESS_TOKEN", "")
	if accessToken == "" {
		log.Fatal("FATAL: WHATSAPP_ACCESS_TOKEN environment variable is not set.")
	}

	cfg := &Config{
		HTTPPort:        port,
		VerifyToken:     verifyToken,
		MongoURI:        mongoURI,
		DBName:          getEnv("DB_NAME", "whatsapp_relay"),
		PhoneNumberID:   phoneNumberID,
		AccessToken:     accessToken,
		GraphAPIBaseURL: getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com"),
		GraphAPIVersion: getEnv("GRAPH_API_VERSION", "v18.0"),
	}

	log.Printf("Loaded config: Port=%s, DB=%s, PhoneNumberID=%s, GraphAPI=%s/%s, Tokens=***",
		cfg.HTTPPort, cfg.DBName, cfg.PhoneNumberID, cfg.GraphAPIBaseURL, cfg.GraphAPIVersion)

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Env variable %s not set, using default: %s", key, fallback)
	return fallback
}
