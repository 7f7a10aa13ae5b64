// Package config loads application configuration from environment variables.
// All variables use the LEARN_ prefix.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Notes sources.
const (
	SourceEmbedded = "embedded"
	SourceDir      = "dir"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Log      LogConfig
	Notes    NotesConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL disables
// the database.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Dragonfly/Redis connection settings. An empty URL
// disables the document cache.
type CacheConfig struct {
	URL        string
	TTLSeconds int
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// NotesConfig selects where notes are loaded from and how they resolve.
type NotesConfig struct {
	Source         string // "embedded", "dir" or "postgres"
	Path           string // bundle directory for the "dir" source
	DefaultGrade   string
	AdvancedGrades []string
	MaxExprLen     int
}

// Load reads configuration from environment variables with LEARN_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("LEARN_SERVER_PORT", 8080),
			Host: envStr("LEARN_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("LEARN_DATABASE_URL", ""),
			MaxConns: envInt("LEARN_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("LEARN_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL:        envStr("LEARN_CACHE_URL", ""),
			TTLSeconds: envInt("LEARN_CACHE_TTL_SECONDS", 3600),
		},
		Log: LogConfig{
			Level:  envStr("LEARN_LOG_LEVEL", "info"),
			Format: envStr("LEARN_LOG_FORMAT", "json"),
		},
		Notes: NotesConfig{
			Source:         envStr("LEARN_NOTES_SOURCE", SourceEmbedded),
			Path:           envStr("LEARN_NOTES_PATH", "./notes"),
			DefaultGrade:   envStr("LEARN_NOTES_DEFAULT_GRADE", "O-Level"),
			AdvancedGrades: envList("LEARN_NOTES_ADVANCED_GRADES", []string{"A-Level"}),
			MaxExprLen:     envInt("LEARN_NOTES_MAX_EXPR_LEN", 4096),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is coherent.
func (c *Config) Validate() error {
	switch c.Notes.Source {
	case SourceEmbedded:
	case SourceDir:
		if c.Notes.Path == "" {
			return fmt.Errorf("LEARN_NOTES_PATH is required when LEARN_NOTES_SOURCE=%s", SourceDir)
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("LEARN_DATABASE_URL is required when LEARN_NOTES_SOURCE=%s", SourcePostgres)
		}
	default:
		return fmt.Errorf("LEARN_NOTES_SOURCE must be %q, %q or %q, got %q",
			SourceEmbedded, SourceDir, SourcePostgres, c.Notes.Source)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("LEARN_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("LEARN_CACHE_TTL_SECONDS must not be negative, got %d", c.Cache.TTLSeconds)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("LEARN_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}
	return nil
}

// SlogLevel converts the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("LEARN_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
