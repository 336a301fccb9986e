package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/tiwac100/hydrogen/pkg/config"
)

// DefaultSessionSecret is only accepted in development.
const DefaultSessionSecret = "dev-session-secret-change-me"

const minSessionSecretLen = 32

// Config holds all configuration for the storefront account service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development" validate:"oneof=development staging production"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080" validate:"gte=1,lte=65535"`

	// Account service
	AccountServiceURL  string `env:"ACCOUNT_SERVICE_URL" envDefault:"http://localhost:8002" validate:"required,url"`
	AccountTimeoutSecs int    `env:"ACCOUNT_SERVICE_TIMEOUT_SECONDS" envDefault:"10" validate:"gte=1"`
	AccountMaxRetries  int    `env:"ACCOUNT_SERVICE_MAX_RETRIES" envDefault:"2" validate:"gte=0,lte=5"`

	// Circuit breaker settings for account service calls
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5" validate:"gt=0,lte=1"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Redis address cache
	RedisEnabled        bool   `env:"REDIS_ENABLED" envDefault:"false"`
	RedisAddr           string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword       string `env:"REDIS_PASSWORD"`
	RedisDB             int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
	AddressCacheTTLSecs int    `env:"ADDRESS_CACHE_TTL_SECONDS" envDefault:"60" validate:"gte=1"`

	// Kafka address events
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Session cookie
	SessionSecret       string `env:"SESSION_SECRET" envDefault:"dev-session-secret-change-me"`
	SessionCookieName   string `env:"SESSION_COOKIE_NAME" envDefault:"storefront_session" validate:"required"`
	SessionCookieSecure bool   `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	SessionTTLMins      int    `env:"SESSION_TTL_MINUTES" envDefault:"1440" validate:"gte=1"`

	// Rate limit on mutation routes, per client IP
	RateLimitEnabled bool    `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     float64 `env:"RATE_LIMIT_RPS" envDefault:"5" validate:"gt=0"`
	RateLimitBurst   int     `env:"RATE_LIMIT_BURST" envDefault:"10" validate:"gte=1"`
	// Reverse proxies whose X-Forwarded-For is trusted. Empty keys on the peer address.
	TrustedProxyCIDRs []string `env:"TRUSTED_PROXY_CIDRS" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0" validate:"gte=0,lte=1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks invariants that span fields or depend on the environment.
func (c *Config) validate() error {
	if c.Environment != "development" {
		if c.SessionSecret == DefaultSessionSecret {
			return fmt.Errorf("SESSION_SECRET must be set outside development")
		}
		if len(c.SessionSecret) < minSessionSecretLen {
			return fmt.Errorf("SESSION_SECRET must be at least %d characters, got %d", minSessionSecretLen, len(c.SessionSecret))
		}
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.RedisEnabled && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when REDIS_ENABLED is set")
	}
	return nil
}

// AccountTimeout returns the per-request timeout for account service calls.
func (c *Config) AccountTimeout() time.Duration {
	return time.Duration(c.AccountTimeoutSecs) * time.Second
}

// AddressCacheTTL returns how long a cached address collection stays valid.
func (c *Config) AddressCacheTTL() time.Duration {
	return time.Duration(c.AddressCacheTTLSecs) * time.Second
}

// SessionTTL returns the maximum lifetime of a session cookie.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMins) * time.Minute
}
