// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Session backends.
const (
	SessionBackendSQL    = "sql"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	FrontendURL    string
	DBPath         string
	DatabaseURL    string // Postgres; overrides DBPath when set
	SessionBackend string
	SessionTTL     time.Duration
	SweepInterval  time.Duration
	Redis          RedisConfig
	Timezone       string
	HistoryMaxDays int
	CORSOrigins    []string
	ChatRateLimit  int // messages per minute per session; 0 disables
	Transcript     TranscriptConfig
}

// RedisConfig addresses the Redis session backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TranscriptConfig controls NDJSON chat transcripts.
type TranscriptConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	queueSize := getEnvInt("TRANSCRIPT_QUEUE_SIZE", 1000)
	if queueSize <= 0 {
		queueSize = 1000
	}

	frontendURL := getEnv("FRONTEND_URL", "")
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		FrontendURL:    frontendURL,
		DBPath:         getEnv("DB_PATH", "./data/mood_data.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendSQL)),
		SessionTTL:     getEnvDuration("SESSION_TTL", 30*24*time.Hour),
		SweepInterval:  getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Timezone:       getEnv("MOOD_TIMEZONE", "Asia/Kolkata"),
		HistoryMaxDays: getEnvInt("HISTORY_MAX_DAYS", 90),
		CORSOrigins:    getEnvList("CORS_ORIGINS", defaultOrigins(frontendURL)),
		ChatRateLimit:  getEnvInt("CHAT_RATE_LIMIT", 30),
		Transcript: TranscriptConfig{
			Enabled:   getEnvBool("TRANSCRIPT_ENABLED", false),
			Dir:       getEnv("TRANSCRIPT_DIR", "./data/transcripts"),
			QueueSize: queueSize,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" && c.DatabaseURL == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	switch c.SessionBackend {
	case SessionBackendSQL, SessionBackendMemory:
	case SessionBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR cannot be empty when SESSION_BACKEND=redis")
		}
	default:
		return fmt.Errorf("SESSION_BACKEND must be one of sql, redis, memory; got %q", c.SessionBackend)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.HistoryMaxDays <= 0 {
		return fmt.Errorf("HISTORY_MAX_DAYS must be > 0")
	}
	if c.ChatRateLimit < 0 {
		return fmt.Errorf("CHAT_RATE_LIMIT must be >= 0")
	}
	if c.Transcript.Enabled && c.Transcript.Dir == "" {
		return fmt.Errorf("TRANSCRIPT_DIR cannot be empty")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// UsePostgres reports whether the mood log lives in Postgres.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

func defaultOrigins(frontendURL string) []string {
	if frontendURL == "" {
		return []string{"http://localhost:3000", "http://localhost:5173"}
	}
	return []string{frontendURL}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
