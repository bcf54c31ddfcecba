package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 90, cfg.Certificate.DefaultValidityDays)
	assert.Equal(t, "EUR", cfg.Certificate.Currency)
	assert.True(t, cfg.UsesDefaultSecret())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sustaina.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
certificate:
  currency: GBP
  verify_base_url: https://verify.example.com/c/{id}
  year_prefix: true
cache:
  ttl: 5m
rate_limit:
  per_minute: 30
security:
  allowed_origins:
    - https://app.example.com
`), 0o600))

	t.Setenv(FileEnv, path)
	t.Setenv("PORT", "7070")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DEFAULT_VALIDITY_DAYS", "30")

	cfg, err := Load()
	require.NoError(t, err)

	// environment wins over the file
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "from-env", cfg.Session.Secret)
	assert.False(t, cfg.UsesDefaultSecret())
	assert.Equal(t, 30, cfg.Certificate.DefaultValidityDays)

	assert.Equal(t, "GBP", cfg.Certificate.Currency)
	assert.Equal(t, "https://verify.example.com/c/{id}", cfg.Certificate.VerifyBaseURL)
	assert.True(t, cfg.Certificate.YearPrefix)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 30, cfg.RateLimit.PerMinute)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Security.AllowedOrigins)

	// untouched keys keep their defaults
	assert.Equal(t, 10, cfg.RateLimit.CertificatePerMinute)
	assert.Equal(t, "Sustaina", cfg.Certificate.IssuerName)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing file", env: map[string]string{FileEnv: "/nonexistent/sustaina.yaml"}},
		{name: "bad integer", env: map[string]string{"REDIS_DB": "zero"}},
		{name: "bad duration", env: map[string]string{"CACHE_TTL": "soon"}},
		{name: "bad bool", env: map[string]string{"ENABLE_HSTS": "perhaps"}},
		{name: "validity out of range", env: map[string]string{"DEFAULT_VALIDITY_DAYS": "400"}},
		{name: "bad port", env: map[string]string{"PORT": "http"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "lower-case currency", mutate: func(c *Config) { c.Certificate.Currency = "eur" }},
		{name: "empty secret", mutate: func(c *Config) { c.Session.Secret = "" }},
		{name: "zero cache ttl", mutate: func(c *Config) { c.Cache.TTL = 0 }},
		{name: "negative rate", mutate: func(c *Config) { c.RateLimit.PerMinute = -1 }},
		{name: "origin without scheme", mutate: func(c *Config) { c.Security.AllowedOrigins = []string{"example.com"} }},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "loud" }},
		{name: "empty data dir", mutate: func(c *Config) { c.DataDir = " " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Empty(t, splitList(""))
}
