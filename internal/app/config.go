package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:8080"

// Config is the cart server configuration. Values come from CART_* env vars,
// flags, or config.yaml.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API listen address"`
	DatabaseURL  string `usage:"PostgreSQL URL (CART_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	APIKeyPepper string `usage:"HMAC pepper for admin API keys" flag:"api-key-pepper"`
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
	Health       HealthConfig
}

// RateLimitConfig sizes the per-client token bucket.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Requests allowed per window"`
	Window time.Duration `default:"1m" usage:"Time to refill Max requests"`
}

// CORSConfig controls CORS headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentialed requests" flag:"cors-credentials"`
}

// GracefulConfig controls shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s" usage:"Wait after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// HealthConfig controls probe polling.
type HealthConfig struct {
	Interval      time.Duration `default:"10s" usage:"Health check interval" flag:"health-interval"`
	MaxGoroutines int           `default:"10000" usage:"Liveness goroutine ceiling" flag:"health-max-goroutines"`
	MaxGCPause    time.Duration `default:"1s" usage:"Liveness GC pause ceiling" flag:"health-max-gc-pause"`
}

// LoadConfig reads configuration and applies platform fallbacks.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CART",
		Files:     []string{"config.yaml", "/etc/cart/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults(os.Getenv)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database URL is required: set CART_DATABASE_URL or DATABASE_URL")
	}
	if c.APIKeyPepper == "" {
		return errors.New("api key pepper is required: set CART_API_KEY_PEPPER")
	}
	return nil
}

// applyPlatformDefaults honours DATABASE_URL and PORT as set by hosting
// platforms.
func (c *Config) applyPlatformDefaults(getenv func(string) string) {
	if c.DatabaseURL == "" {
		c.DatabaseURL = getenv("DATABASE_URL")
	}
	if port := getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
