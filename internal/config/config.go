package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Upstream Rupia API
	RupiaAPIURL string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int
	BreakerTimeout time.Duration

	// Observability
	OTLPEndpoint string // empty disables trace export

	// Sessions
	SessionBackend string
	RedisURL       string
	SessionTTL     time.Duration // used when the upstream token carries no exp

	// Cache
	CategoryCacheTTL time.Duration

	// Dashboard rules
	ReserveCategory            string
	ExcludedCategories         []string
	StatementClosingDay        int
	StatementDueDay            int
	Timezone                   string
	DashboardEmptyOnFetchError bool
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RupiaAPIURL: getEnv("RUPIA_API_URL", "http://localhost:3000"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),
		BreakerTimeout: getEnvDuration("BREAKER_TIMEOUT", 10*time.Second),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendMemory)),
		RedisURL:       getEnv("REDIS_URL", ""),
		SessionTTL:     getEnvDuration("SESSION_TTL", 12*time.Hour),

		CategoryCacheTTL: getEnvDuration("CATEGORY_CACHE_TTL", 30*time.Second),

		ReserveCategory:            getEnv("RESERVE_CATEGORY", "Caixinha"),
		ExcludedCategories:         getEnvList("EXCLUDED_CATEGORIES", []string{"CORREÇÃO"}),
		StatementClosingDay:        getEnvInt("STATEMENT_CLOSING_DAY", 12),
		StatementDueDay:            getEnvInt("STATEMENT_DUE_DAY", 19),
		Timezone:                   getEnv("TIMEZONE", "America/Sao_Paulo"),
		DashboardEmptyOnFetchError: getEnvBool("DASHBOARD_EMPTY_ON_FETCH_ERROR", true),
	}
}

// Validate rejects settings the BFA cannot run with.
func (c *Config) Validate() error {
	if c.RupiaAPIURL == "" {
		return fmt.Errorf("RUPIA_API_URL is required")
	}
	if c.StatementClosingDay < 1 || c.StatementClosingDay > 28 {
		return fmt.Errorf("STATEMENT_CLOSING_DAY must be between 1 and 28, got %d", c.StatementClosingDay)
	}
	if c.StatementDueDay < 1 || c.StatementDueDay > 28 {
		return fmt.Errorf("STATEMENT_DUE_DAY must be between 1 and 28, got %d", c.StatementDueDay)
	}
	switch c.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. "today" for the statement window is taken in
// this zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
