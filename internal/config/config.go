// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Lllllllleong/noteshelper/internal/logger"
)

// Config holds all runtime configuration for the noteshelper service.
type Config struct {
	// HTTP server
	ListenAddr string

	// Google Cloud
	ProjectID      string
	ImageBucket    string
	VertexAIRegion string

	// Firestore
	ResultsCollection string

	// Commentary generation
	CommentaryProvider string // "vertex" or "openai"
	OpenAIAPIKey       string
	OpenAIModel        string

	// Pipeline tuning
	OCRPollInterval time.Duration
	OCRTimeout      time.Duration
	RemoteRetries   int
	SignedURLTTL    time.Duration

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		ProjectID:          getEnv("GOOGLE_CLOUD_PROJECT", ""),
		ImageBucket:        getEnv("IMAGE_BUCKET", "notes-helper-imgstore"),
		VertexAIRegion:     getEnv("VERTEX_AI_REGION", "us-central1"),
		ResultsCollection:  getEnv("RESULTS_COLLECTION", "image-processing-results"),
		CommentaryProvider: getEnv("COMMENTARY_PROVIDER", "vertex"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4"),
		OCRPollInterval:    getDuration("OCR_POLL_INTERVAL", time.Second),
		OCRTimeout:         getDuration("OCR_TIMEOUT", 2*time.Minute),
		RemoteRetries:      getInt("REMOTE_RETRIES", 3),
		SignedURLTTL:       getDuration("SIGNED_URL_TTL", time.Hour),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:      getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:          getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required")
	}
	if c.ImageBucket == "" {
		return fmt.Errorf("IMAGE_BUCKET is required")
	}
	switch c.CommentaryProvider {
	case "vertex":
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when COMMENTARY_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown COMMENTARY_PROVIDER %q (want vertex or openai)", c.CommentaryProvider)
	}
	if c.OCRPollInterval <= 0 {
		return fmt.Errorf("OCR_POLL_INTERVAL must be positive")
	}
	if c.OCRTimeout <= 0 {
		return fmt.Errorf("OCR_TIMEOUT must be positive")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration derived from the main config.
func (c *Config) GetLoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
