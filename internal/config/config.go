package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Upload transport
	UploadTokenSecret string

	// Transcription API (audio/video processing)
	TranscribeAPIKey     string
	TranscribeAPIBaseURL string

	// Database
	DatabaseURL string

	// Worker
	WorkerEnabled           bool
	WorkerPollInterval      time.Duration
	WorkerHeartbeatInterval time.Duration
	WorkerMaxAttempts       int

	// Server
	Port        string
	Environment string
	BaseURL     string
}

func Load() (*Config, error) {
	// Best-effort: a missing .env is fine, real env vars win.
	godotenv.Load()

	cfg := &Config{
		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabasePublishableKey: getEnv("SUPABASE_PUBLISHABLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket:  getEnv("SUPABASE_STORAGE_BUCKET", "project-assets"),

		UploadTokenSecret: getEnv("UPLOAD_TOKEN_SECRET", ""),

		TranscribeAPIKey:     getEnv("TRANSCRIBE_API_KEY", ""),
		TranscribeAPIBaseURL: getEnv("TRANSCRIBE_API_BASE_URL", "https://api.openai.com/v1"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		WorkerEnabled:           getEnvBool("WORKER_ENABLED", true),
		WorkerPollInterval:      getEnvDuration("WORKER_POLL_INTERVAL", 5*time.Second),
		WorkerHeartbeatInterval: getEnvDuration("WORKER_HEARTBEAT_INTERVAL", 10*time.Second),
		WorkerMaxAttempts:       getEnvInt("WORKER_MAX_ATTEMPTS", 3),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.UploadTokenSecret == "" {
		return fmt.Errorf("UPLOAD_TOKEN_SECRET is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
