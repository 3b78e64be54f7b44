package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from the environment with an
// optional .env file.
type Config struct {
	API struct {
		BaseURL string
		Timeout time.Duration
	}
	Session struct {
		Backend  string // file, redis or memory
		StateDir string
	}
	Auth struct {
		Username string
		Password string
	}
	Redis struct {
		Host     string
		Port     int
		Password string
		DB       int
	}
	Export struct {
		Dir string
	}
	Poll struct {
		Interval  time.Duration
		StatsDays int
	}
	Status struct {
		Enabled bool
		Host    string
		Port    int
	}
	CORS struct {
		AllowedOrigins []string
		AllowedMethods []string
		AllowedHeaders []string
	}
	Metrics struct {
		Enabled bool
	}
	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.API.BaseURL = getEnv("API_BASE_URL", "http://localhost:8000")
	cfg.API.Timeout = getEnvDuration("API_TIMEOUT", 30*time.Second)

	cfg.Session.Backend = getEnv("SESSION_BACKEND", "file")
	cfg.Session.StateDir = getEnv("SESSION_STATE_DIR", ".hospital-dashboard")

	cfg.Auth.Username = getEnv("DASHBOARD_USERNAME", "")
	cfg.Auth.Password = getEnv("DASHBOARD_PASSWORD", "")

	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnvInt("REDIS_PORT", 6379)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.Export.Dir = getEnv("EXPORT_DIR", "exports")

	cfg.Poll.Interval = getEnvDuration("POLL_INTERVAL", 60*time.Second)
	cfg.Poll.StatsDays = getEnvInt("STATS_DAYS", 7)

	cfg.Status.Enabled = getEnvBool("STATUS_ENABLED", true)
	cfg.Status.Host = getEnv("STATUS_HOST", "127.0.0.1")
	cfg.Status.Port = getEnvInt("STATUS_PORT", 8090)

	cfg.CORS.AllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:*"})
	cfg.CORS.AllowedMethods = getEnvList("CORS_ALLOWED_METHODS", []string{"GET", "OPTIONS"})
	cfg.CORS.AllowedHeaders = getEnvList("CORS_ALLOWED_HEADERS", []string{"Accept", "Content-Type"})

	cfg.Metrics.Enabled = getEnvBool("METRICS_ENABLED", true)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "console")

	return cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	switch c.Session.Backend {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("SESSION_BACKEND must be file, redis or memory, got %q", c.Session.Backend)
	}
	if c.Session.Backend == "file" && c.Session.StateDir == "" {
		return fmt.Errorf("SESSION_STATE_DIR is required for the file backend")
	}
	if c.Poll.StatsDays < 1 {
		return fmt.Errorf("STATS_DAYS must be at least 1")
	}
	if c.Status.Enabled && (c.Status.Port < 1 || c.Status.Port > 65535) {
		return fmt.Errorf("STATUS_PORT out of range: %d", c.Status.Port)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

func getEnvList(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return fallback
}
