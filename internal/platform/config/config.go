package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile             = ".env"
	defaultPort                = "8080"
	defaultReadTimeout         = 15 * time.Second
	defaultWriteTimeout        = 30 * time.Second
	defaultIdleTimeout         = 120 * time.Second
	defaultLookupBaseURL       = "https://viacep.com.br"
	defaultLookupTimeout       = 10 * time.Second
	defaultCheckoutPhone       = "5531999306022"
	defaultSessionTTL          = 2 * time.Hour
	defaultSessionSweepEvery   = 10 * time.Minute
	defaultAddressFocusDelayMS = 100
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Lookup   LookupConfig
	Checkout CheckoutConfig
	Session  SessionConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// LookupConfig points at the postal-code lookup service.
type LookupConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CheckoutConfig holds the order handoff destination.
type CheckoutConfig struct {
	// Phone is the WhatsApp destination in international digits-only form.
	Phone string
}

// SessionConfig controls visitor session lifecycle.
type SessionConfig struct {
	TTL             time.Duration
	SweepInterval   time.Duration
	FocusDelayMilli int
}

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// Option customises configuration loading.
type Option func(*loaderOptions)

// WithEnvFile overrides the .env file location.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap supplies explicit values taking precedence over the process
// environment; primarily for tests.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.LookupEnv, relying only on
// provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env
// overrides, and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "STOREFRONT_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "STOREFRONT_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "STOREFRONT_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "STOREFRONT_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Lookup: LookupConfig{
			BaseURL: strings.TrimRight(stringWithDefault(lookup, "STOREFRONT_LOOKUP_BASE_URL", defaultLookupBaseURL), "/"),
			Timeout: durationWithDefault(lookup, "STOREFRONT_LOOKUP_TIMEOUT", defaultLookupTimeout),
		},
		Checkout: CheckoutConfig{
			Phone: stringWithDefault(lookup, "STOREFRONT_CHECKOUT_PHONE", defaultCheckoutPhone),
		},
		Session: SessionConfig{
			TTL:             durationWithDefault(lookup, "STOREFRONT_SESSION_TTL", defaultSessionTTL),
			SweepInterval:   durationWithDefault(lookup, "STOREFRONT_SESSION_SWEEP_INTERVAL", defaultSessionSweepEvery),
			FocusDelayMilli: intWithDefault(lookup, "STOREFRONT_ADDRESS_FOCUS_DELAY_MS", defaultAddressFocusDelayMS),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Checkout.Phone) == "" {
		return fmt.Errorf("config: checkout phone must not be empty")
	}
	for _, r := range c.Checkout.Phone {
		if r < '0' || r > '9' {
			return fmt.Errorf("config: checkout phone must contain digits only, got %q", c.Checkout.Phone)
		}
	}
	if c.Lookup.BaseURL == "" {
		return fmt.Errorf("config: lookup base URL must not be empty")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: session TTL must be positive")
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return values, nil
}

type lookupFunc func(string) (string, bool)

func stringWithDefault(lookup lookupFunc, key, fallback string) string {
	if value, ok := lookup(key); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func durationWithDefault(lookup lookupFunc, key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok {
		if parsed, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func intWithDefault(lookup lookupFunc, key string, fallback int) int {
	if value, ok := lookup(key); ok {
		trimmed := strings.TrimSpace(value)
		var parsed int
		if _, err := fmt.Sscanf(trimmed, "%d", &parsed); err == nil {
			return parsed
		}
	}
	return fallback
}
