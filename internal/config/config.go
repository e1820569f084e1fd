// Package config provides environment-based configuration for Pantry.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the Pantry service.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Database (PostgreSQL with pgvector)
	DatabaseURL string

	// NATS / Hermes
	NatsURL string

	// Embeddings
	EmbeddingBackend string // "simple" or "openai"
	OpenAIAPIKey     string
	OpenAIEmbedModel string

	// Chat model
	ChatModel     string
	ChatBaseURL   string
	StepBudget    int
	SystemPrompt  string

	// Search policy
	SearchThreshold float64

	// Credentials at rest. When OPENAI_API_KEY_ENC is set, it is a fernet token
	// decrypted with EncryptionKey at startup.
	EncryptionKeyPath string
	EncryptionKey     string
	OpenAIAPIKeyEnc   string

	// Background drift repair
	WorkerEnabled   bool
	WorkerInterval  time.Duration
	WorkerBatchSize int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	c := &Config{
		Port:              envInt("PANTRY_PORT", 8600),
		LogLevel:          envStr("PANTRY_LOG_LEVEL", "info"),
		DatabaseURL:       envStr("DATABASE_URL", ""),
		NatsURL:           envStr("NATS_URL", ""),
		EmbeddingBackend:  envStr("EMBEDDING_BACKEND", "simple"),
		OpenAIAPIKey:      envStr("OPENAI_API_KEY", ""),
		OpenAIEmbedModel:  envStr("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		ChatModel:         envStr("PANTRY_CHAT_MODEL", "gpt-4o"),
		ChatBaseURL:       envStr("PANTRY_CHAT_BASE_URL", ""),
		StepBudget:        envInt("PANTRY_STEP_BUDGET", 5),
		SystemPrompt:      envStr("PANTRY_SYSTEM_PROMPT", ""),
		SearchThreshold:   envFloat("PANTRY_SEARCH_THRESHOLD", 0.5),
		EncryptionKeyPath: envStr("ENCRYPTION_KEY_PATH", "/run/secrets/pantry_encryption_key"),
		EncryptionKey:     envStr("ENCRYPTION_KEY", ""),
		OpenAIAPIKeyEnc:   envStr("OPENAI_API_KEY_ENC", ""),
		WorkerEnabled:     envStr("PANTRY_WORKER_ENABLED", "") == "true",
		WorkerInterval:    envDuration("PANTRY_WORKER_INTERVAL", 30*time.Second),
		WorkerBatchSize:   envInt("PANTRY_WORKER_BATCH_SIZE", 50),
	}

	// Load encryption key from file if not set via env
	if c.EncryptionKey == "" {
		data, err := os.ReadFile(c.EncryptionKeyPath)
		if err == nil {
			c.EncryptionKey = string(data)
		}
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return c, nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
