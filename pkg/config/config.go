package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable name, e.g. EIRCODE_API_KEY.
const EnvPrefix = "EIRCODE"

const DefaultBaseURI = "https://api.autoaddress.ie/2.0"

type Config struct {
	APIKey   string        `envconfig:"API_KEY"`
	BaseURI  string        `envconfig:"BASE_URI" default:"https://api.autoaddress.ie/2.0"`
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"30s"`
	MaxTries uint          `envconfig:"MAX_TRIES" default:"1"`
	LogLevel string        `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%s_API_KEY is required", EnvPrefix)
	}
	if c.BaseURI == "" {
		return fmt.Errorf("%s_BASE_URI is required", EnvPrefix)
	}
	u, err := url.Parse(c.BaseURI)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s_BASE_URI must be an absolute URL, got %q", EnvPrefix, c.BaseURI)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%s_TIMEOUT must not be negative", EnvPrefix)
	}
	return nil
}
