package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EIRCODE_API_KEY", "dev-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev-key", cfg.APIKey)
	assert.Equal(t, DefaultBaseURI, cfg.BaseURI)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, uint(1), cfg.MaxTries)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("EIRCODE_API_KEY", "dev-key")
	t.Setenv("EIRCODE_BASE_URI", "http://localhost:8080/2.0")
	t.Setenv("EIRCODE_TIMEOUT", "5s")
	t.Setenv("EIRCODE_MAX_TRIES", "3")
	t.Setenv("EIRCODE_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/2.0", cfg.BaseURI)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, uint(3), cfg.MaxTries)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("EIRCODE_API_KEY", "  ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EIRCODE_API_KEY is required")
}

func TestValidateBaseURI(t *testing.T) {
	cfg := &Config{APIKey: "k", BaseURI: "not-a-url"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be an absolute URL")
}
