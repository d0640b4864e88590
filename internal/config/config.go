package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/benvon/goal-insights/internal/analytics"
	"github.com/joho/godotenv"
)

// Cache backends
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds application configuration
type Config struct {
	DatabaseURL string
	ServerPort  string

	// HTTP surface
	EnableHSTS           bool
	FrontendURL          string // Comma-separated CORS origins
	CORSAllowCredentials bool
	RateLimit            string // ulule format, e.g. "100-M"
	RequestTimeout       time.Duration

	// Insight cache
	CacheBackend string
	RedisURL     string
	CacheTTL     time.Duration

	// Background recompute
	RabbitMQURL       string
	RabbitMQPrefetch  int
	Concurrency       int
	DefaultTimeframe  string
	DLQRetention      time.Duration
	DLQGCInterval     time.Duration
	ScheduleRetryWait time.Duration

	// Observability
	WorkerDebugMode bool
	ServerDebugMode bool
	LogDevelopment  bool
	OTELEnabled     bool
	OTELEndpoint    string
	OTELInsecure    bool
	OTELSampleRatio float64
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real env vars win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := &Config{
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		EnableHSTS:           getEnvBool("ENABLE_HSTS", false),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSAllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", false),
		RateLimit:            getEnv("RATE_LIMIT", "100-M"),
		RequestTimeout:       getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		CacheBackend:         strings.ToLower(getEnv("INSIGHTS_CACHE_BACKEND", CacheBackendRedis)),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CacheTTL:             getEnvDuration("INSIGHTS_CACHE_TTL", 48*time.Hour),
		RabbitMQURL:          getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch:     getEnvInt("RABBITMQ_PREFETCH", 1),
		Concurrency:          getEnvInt("INSIGHTS_CONCURRENCY", 4),
		DefaultTimeframe:     getEnv("INSIGHTS_DEFAULT_TIMEFRAME", string(analytics.TimeframeMonth)),
		DLQRetention:         getEnvDuration("DLQ_RETENTION", 7*24*time.Hour),
		DLQGCInterval:        getEnvDuration("DLQ_GC_INTERVAL", time.Hour),
		ScheduleRetryWait:    getEnvDuration("SCHEDULE_RETRY_WAIT", time.Minute),
		WorkerDebugMode:      getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:      getEnvBool("SERVER_DEBUG_MODE", false),
		LogDevelopment:       getEnv("LOG_FORMAT", "json") == "console",
		OTELEnabled:          getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:         getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:         getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELSampleRatio:      getEnvFloat("OTEL_TRACES_SAMPLER_RATIO", 1),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and enum values
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	switch c.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when INSIGHTS_CACHE_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("INSIGHTS_CACHE_BACKEND must be %q or %q, got %q", CacheBackendMemory, CacheBackendRedis, c.CacheBackend))
	}
	if _, err := analytics.ParseTimeframe(c.DefaultTimeframe); err != nil {
		errs = append(errs, fmt.Errorf("INSIGHTS_DEFAULT_TIMEFRAME: %w", err))
	}
	if c.OTELEnabled && c.OTELEndpoint == "" {
		errs = append(errs, errors.New("OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED=true"))
	}
	if c.Concurrency < 1 {
		errs = append(errs, errors.New("INSIGHTS_CONCURRENCY must be at least 1"))
	}
	return errors.Join(errs...)
}

// RequireQueue reports an error when background recompute is not configured
func (c *Config) RequireQueue() error {
	if c.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is required for background recompute")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
