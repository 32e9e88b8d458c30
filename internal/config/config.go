package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
	SessionStoreCookie = "cookie"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// RevoMotors API
	APIBaseURL string `envconfig:"API_BASE_URL" default:"https://revomotors.onrender.com"`

	// HTTP client
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	// Resilience (reads only; writes are never retried)
	MaxRetries     int           `envconfig:"MAX_RETRIES" default:"2"`
	InitialBackoff time.Duration `envconfig:"INITIAL_BACKOFF" default:"100ms"`
	MaxConcurrency int           `envconfig:"MAX_CONCURRENCY" default:"50"`

	// Sessions
	SessionStore  string        `envconfig:"SESSION_STORE" default:"memory"`
	SessionSecret string        `envconfig:"SESSION_SECRET" default:"revomotors-dev-secret-change-me"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE" default:"false"`

	// Redis (SESSION_STORE=redis)
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Observability. Empty endpoint disables trace export.
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// Seller listing uploads
	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"20971520"`

	// Per-IP rate limits, requests per minute
	LoginRatePerMin   int `envconfig:"LOGIN_RATE_PER_MIN" default:"10"`
	ListingRatePerMin int `envconfig:"LISTING_RATE_PER_MIN" default:"5"`
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreRedis, SessionStoreCookie:
	default:
		return fmt.Errorf("config: unknown SESSION_STORE %q", c.SessionStore)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("config: API_BASE_URL must not be empty")
	}
	if len(c.SessionSecret) < 16 {
		return fmt.Errorf("config: SESSION_SECRET must be at least 16 bytes")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive")
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("config: MAX_CONCURRENCY must be at least 1")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config: MAX_RETRIES must not be negative")
	}
	return nil
}
