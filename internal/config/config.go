// Package config provides configuration management for LifeGraph. Settings
// load from environment variables with the LIFEGRAPH_ prefix and sensible
// defaults; user settings (owner name) persist to the settings table so they
// survive restarts.
package config

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the LifeGraph application.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	LLM      LLMConfig
	Security SecurityConfig
	Worker   WorkerConfig
	User     UserConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // default: 7575
	Host string // default: 127.0.0.1
}

// StorageConfig contains database configuration.
type StorageConfig struct {
	Engine      string // "sqlite" or "postgres" (default: sqlite)
	DataPath    string // SQLite data directory (default: ./data)
	PostgresDSN string // PostgreSQL connection string
}

// LLMConfig contains model provider configuration for the AI features.
type LLMConfig struct {
	Provider             string // ollama, openai, anthropic (default: ollama)
	OllamaURL            string // default: http://localhost:11434
	OllamaModel          string // default: qwen2.5:7b
	OllamaEmbeddingModel string // default: nomic-embed-text
	OpenAIAPIKey         string
	OpenAIModel          string // default: gpt-4o-mini
	AnthropicAPIKey      string
	AnthropicModel       string // default: claude-3-5-haiku-latest
}

// SecurityConfig contains auth and rate-limit settings.
type SecurityConfig struct {
	Mode          string  // development or production (default: development)
	APIToken      string  // bearer token; required in production mode
	RateLimit     float64 // requests per second per client (default: 20)
	RateBurst     int     // burst allowance (default: 40)
	EnableLimiter bool    // default: true
}

// WorkerConfig tunes the background tagging workers.
type WorkerConfig struct {
	NumWorkers int // default: 2
	QueueSize  int // default: 100
	MaxRetries int // default: 3
}

// UserConfig contains user settings persisted in the settings table.
type UserConfig struct {
	// OwnerName is the display name shown in the UI.
	// Env var: LIFEGRAPH_OWNER_NAME; database key: owner_name.
	OwnerName string
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	return buildBaseConfig(), nil
}

// LoadFromDB reads configuration from environment variables and overlays
// persisted user settings from the database; the DB value wins.
func LoadFromDB(db *sql.DB) (*Config, error) {
	if db == nil {
		return nil, errors.New("config: database connection is required")
	}

	cfg := buildBaseConfig()

	ownerName, err := getSetting(db, "owner_name")
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("config: load owner_name: %w", err)
	}
	if ownerName != "" {
		cfg.User.OwnerName = ownerName
	}

	return cfg, nil
}

// SaveUserSettings persists user settings to the settings table with upsert
// semantics.
func (c *Config) SaveUserSettings(db *sql.DB) error {
	if db == nil {
		return errors.New("config: database connection is required")
	}
	if err := setSetting(db, "owner_name", c.User.OwnerName); err != nil {
		return fmt.Errorf("config: save owner_name: %w", err)
	}
	return nil
}

func getSetting(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

func setSetting(db *sql.DB, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

func buildBaseConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("LIFEGRAPH_PORT", 7575),
			Host: getEnv("LIFEGRAPH_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			Engine:      getEnv("LIFEGRAPH_STORAGE_ENGINE", "sqlite"),
			DataPath:    getEnv("LIFEGRAPH_DATA_PATH", "./data"),
			PostgresDSN: getEnv("LIFEGRAPH_POSTGRES_DSN", ""),
		},
		LLM: LLMConfig{
			Provider:             getEnv("LIFEGRAPH_LLM_PROVIDER", "ollama"),
			OllamaURL:            getEnv("LIFEGRAPH_OLLAMA_URL", "http://localhost:11434"),
			OllamaModel:          getEnv("LIFEGRAPH_OLLAMA_MODEL", "qwen2.5:7b"),
			OllamaEmbeddingModel: getEnv("LIFEGRAPH_EMBEDDING_MODEL", "nomic-embed-text"),
			OpenAIAPIKey:         getEnv("LIFEGRAPH_OPENAI_API_KEY", ""),
			OpenAIModel:          getEnv("LIFEGRAPH_OPENAI_MODEL", "gpt-4o-mini"),
			AnthropicAPIKey:      getEnv("LIFEGRAPH_ANTHROPIC_API_KEY", ""),
			AnthropicModel:       getEnv("LIFEGRAPH_ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		},
		Security: SecurityConfig{
			Mode:          getEnv("LIFEGRAPH_SECURITY_MODE", "development"),
			APIToken:      getEnv("LIFEGRAPH_API_TOKEN", ""),
			RateLimit:     getEnvFloat("LIFEGRAPH_RATE_LIMIT", 20),
			RateBurst:     getEnvInt("LIFEGRAPH_RATE_BURST", 40),
			EnableLimiter: getEnvBool("LIFEGRAPH_ENABLE_RATE_LIMITER", true),
		},
		Worker: WorkerConfig{
			NumWorkers: getEnvInt("LIFEGRAPH_WORKERS", 2),
			QueueSize:  getEnvInt("LIFEGRAPH_QUEUE_SIZE", 100),
			MaxRetries: getEnvInt("LIFEGRAPH_MAX_RETRIES", 3),
		},
		User: UserConfig{
			OwnerName: getEnv("LIFEGRAPH_OWNER_NAME", ""),
		},
	}
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBool recognizes true/1/yes and false/0/no, case-insensitive.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}
