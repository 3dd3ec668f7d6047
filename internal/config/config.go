package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

type Config struct {
	// Storage
	Backend    string
	DataFile   string
	SQLitePath string

	// HTTP Server
	Port int

	// API auth; an empty secret disables it
	APISecret string
	TokenTTL  time.Duration

	// Logging
	LogLevel string
}

// Load reads the configuration from the environment.
// Call godotenv.Load() first to pick up a .env file.
func Load() *Config {
	return &Config{
		Backend:    getEnv("SMARTSPLIT_BACKEND", BackendJSON),
		DataFile:   getEnv("SMARTSPLIT_DATA_FILE", "split_data.json"),
		SQLitePath: getEnv("SMARTSPLIT_SQLITE_PATH", "./data/smartsplit.db"),

		Port: getEnvInt("PORT", 8080),

		APISecret: getEnv("SMARTSPLIT_API_SECRET", ""),
		TokenTTL:  getEnvDuration("SMARTSPLIT_TOKEN_TTL", 24*time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	switch c.Backend {
	case BackendJSON:
		if c.DataFile == "" {
			errors = append(errors, "data file path cannot be empty when using json backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid backend '%s': must be one of [%s %s]", c.Backend, BackendJSON, BackendSQLite))
	}

	if c.Port < 1 || c.Port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Port))
	}

	if c.APISecret != "" && len(c.APISecret) < 16 {
		errors = append(errors, "API secret must be at least 16 characters")
	}
	if c.TokenTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	}

	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AuthEnabled reports whether RPCs require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.APISecret != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
