// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	StorefrontAPIURL string        `envconfig:"STOREFRONT_API_URL" default:"http://localhost:8081"`
	RequestTimeout   time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
	// BestEffortTimeout bounds calls whose failure never blocks checkout.
	BestEffortTimeout time.Duration `envconfig:"BEST_EFFORT_TIMEOUT" default:"10s"`

	// StripeSecretKey selects the Stripe gateway; empty runs the sandbox.
	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	Currency        string `envconfig:"CURRENCY" default:"gbp"`

	RedisAddr   string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	SagaLogPath string `envconfig:"SAGA_LOG_PATH" default:"./data/checkout.db"`

	// SessionTTL is refreshed on every cart or buy-now write.
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"168h"`

	PhonePrefix      string        `envconfig:"PHONE_PREFIX" default:"+44"`
	AddressCountry   string        `envconfig:"ADDRESS_COUNTRY" default:"GB"`
	AddressDebounce  time.Duration `envconfig:"ADDRESS_DEBOUNCE" default:"300ms"`
	AddressCacheTTL  time.Duration `envconfig:"ADDRESS_CACHE_TTL" default:"24h"`
	NewsletterSource string        `envconfig:"NEWSLETTER_SOURCE" default:"checkout"`

	OTelEnabled     bool    `envconfig:"OTEL_ENABLED" default:"false"`
	OTelServiceName string  `envconfig:"OTEL_SERVICE_NAME" default:"checkout-gateway"`
	OTelEndpoint    string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	OTelEnvironment string  `envconfig:"OTEL_ENVIRONMENT" default:"local"`
	OTelSampleRatio float64 `envconfig:"OTEL_SAMPLE_RATIO" default:"1"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.StorefrontAPIURL == "" {
		return fmt.Errorf("config: STOREFRONT_API_URL must be set")
	}
	if c.AddressDebounce <= 0 {
		return fmt.Errorf("config: ADDRESS_DEBOUNCE must be positive, got %s", c.AddressDebounce)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.RequestTimeout <= 0 || c.BestEffortTimeout <= 0 {
		return fmt.Errorf("config: request timeouts must be positive")
	}
	return nil
}

// SandboxPayments reports whether card payments run against the in-process
// sandbox gateway.
func (c *Config) SandboxPayments() bool {
	return c.StripeSecretKey == ""
}
