package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server ServerConfig

	// Database Configuration
	Database DatabaseConfig

	// Webhook / deploy trigger configuration
	Webhook WebhookConfig

	// Logging Configuration
	Logging LoggingConfig
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	Environment  string // development, staging, production
}

// DatabaseConfig contains database connection configuration.
// URL is either a sqlite file path (the default) or a
// postgres:// / postgresql:// DSN.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	LogQueries   bool
}

// WebhookConfig contains the GitHub deploy trigger configuration.
type WebhookConfig struct {
	Secret       string
	DeployScript string
	DeployRef    string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// DefaultSQLitePath is used when no DATABASE_URL is configured.
const DefaultSQLitePath = "tuitter.db"

// Load builds a Config from the process environment.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getenv("PORT", "8080"),
			Host:         getenv("HOST", ""),
			ReadTimeout:  getenvInt("READ_TIMEOUT_SECONDS", 15),
			WriteTimeout: getenvInt("WRITE_TIMEOUT_SECONDS", 15),
			Environment:  getenv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			URL:          getenv("DATABASE_URL", DefaultSQLitePath),
			MaxOpenConns: getenvInt("DB_MAX_OPEN_CONNS", 15),
			MaxIdleConns: getenvInt("DB_MAX_IDLE_CONNS", 5),
			LogQueries:   getenvBool("DB_LOG_QUERIES", false),
		},
		Webhook: WebhookConfig{
			Secret:       os.Getenv("GITHUB_WEBHOOK_SECRET"),
			DeployScript: getenv("DEPLOY_SCRIPT", "./deploy.sh"),
			DeployRef:    getenv("DEPLOY_REF", "refs/heads/main"),
		},
		Logging: LoggingConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "json"),
		},
	}
}

// IsPostgres reports whether the database URL points at postgres.
func (d DatabaseConfig) IsPostgres() bool {
	return strings.HasPrefix(d.URL, "postgres://") || strings.HasPrefix(d.URL, "postgresql://")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
