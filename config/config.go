// Package config loads the toolhost configuration from environment
// variables. The configuration is read exactly once at process start and
// passed explicitly to every component; there is no lazy global.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultBaseURL is used when KORA_API_URL is not set.
const DefaultBaseURL = "https://api.koraprotocol.com"

// Config represents the complete toolhost configuration.
type Config struct {
	Environment string
	Server      ServerConfig
	Kora        KoraConfig
	LogLevel    string
}

// ServerConfig holds the HTTP tool surface configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// KoraConfig holds the upstream authorization-service configuration.
type KoraConfig struct {
	// AgentSecret is the packed agent credential. Required.
	AgentSecret string

	// MandateID identifies the spending authority every operation acts on.
	// Required.
	MandateID string

	// AdminKey authenticates the activity and audit reads. Optional; the
	// corresponding tools report themselves unavailable without it.
	AdminKey string

	// BaseURL of the Kora API.
	BaseURL string
}

// New creates a Config by loading environment variables. A .env file is
// honored when present.
func New() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "127.0.0.1"),
			Port:            getEnvAsInt("SERVER_PORT", 8765),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Kora: KoraConfig{
			AgentSecret: getEnv("KORA_AGENT_SECRET", ""),
			MandateID:   getEnv("KORA_MANDATE", ""),
			AdminKey:    getEnv("KORA_ADMIN_KEY", ""),
			BaseURL:     getEnv("KORA_API_URL", DefaultBaseURL),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Kora.AgentSecret == "" {
		return fmt.Errorf("KORA_AGENT_SECRET environment variable is required")
	}
	if c.Kora.MandateID == "" {
		return fmt.Errorf("KORA_MANDATE environment variable is required")
	}
	if c.Kora.BaseURL == "" {
		return fmt.Errorf("kora base URL must not be empty")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// IsDevelopment returns true if running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
