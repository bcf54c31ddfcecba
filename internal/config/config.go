package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/sustaina/shipping-risk-brain/internal/errors"
	"github.com/sustaina/shipping-risk-brain/internal/riskmodel"
)

// FileEnv names the optional YAML file read by Load
const FileEnv = "SUSTAINA_CONFIG"

// DefaultJWTSecret is only suitable for local development
const DefaultJWTSecret = "change-me-in-production"

// Config is the full service configuration
type Config struct {
	Port     string `yaml:"port"`
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`
	Version  string `yaml:"version"`

	Redis       RedisConfig       `yaml:"redis"`
	Session     SessionConfig     `yaml:"session"`
	Certificate CertificateConfig `yaml:"certificate"`
	Cache       CacheConfig       `yaml:"cache"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Security    SecurityConfig    `yaml:"security"`
}

// RedisConfig points at the distributed rate limit store. Empty Addr keeps
// limits in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SessionConfig controls session tokens
type SessionConfig struct {
	Secret     string        `yaml:"secret"`
	Issuer     string        `yaml:"issuer"`
	Expiration time.Duration `yaml:"expiration"`
}

// CertificateConfig controls issued documents
type CertificateConfig struct {
	VerifyBaseURL       string        `yaml:"verify_base_url"`
	Currency            string        `yaml:"currency"`
	IssuerName          string        `yaml:"issuer_name"`
	YearPrefix          bool          `yaml:"year_prefix"`
	DefaultValidityDays int           `yaml:"default_validity_days"`
	Retention           time.Duration `yaml:"retention"`
}

// CacheConfig controls the rendered certificate cache
type CacheConfig struct {
	TTL      time.Duration `yaml:"ttl"`
	MaxItems int           `yaml:"max_items"`
}

// RateLimitConfig holds per-IP limits per minute. Zero disables a limit.
type RateLimitConfig struct {
	PerMinute            int `yaml:"per_minute"`
	CertificatePerMinute int `yaml:"certificate_per_minute"`
}

// SecurityConfig holds HTTP hardening settings
type SecurityConfig struct {
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	EnableHSTS     bool          `yaml:"enable_hsts"`
	CSPReportURI   string        `yaml:"csp_report_uri"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Port:     "8080",
		DataDir:  "./data",
		LogLevel: "info",
		Version:  "1.0.0",
		Session: SessionConfig{
			Secret:     DefaultJWTSecret,
			Issuer:     "sustaina",
			Expiration: 24 * time.Hour,
		},
		Certificate: CertificateConfig{
			Currency:            "EUR",
			IssuerName:          "Sustaina",
			DefaultValidityDays: 90,
			Retention:           365 * 24 * time.Hour,
		},
		Cache: CacheConfig{
			TTL:      15 * time.Minute,
			MaxItems: 500,
		},
		RateLimit: RateLimitConfig{
			PerMinute:            60,
			CertificatePerMinute: 10,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RequestTimeout: 30 * time.Second,
			MaxBodyBytes:   1 << 20,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// SUSTAINA_CONFIG, then environment variables. The result is validated.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, apperrors.NewConfigurationError("cannot read "+path, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, apperrors.NewConfigurationError("invalid environment", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, apperrors.NewConfigurationError(err.Error(), err)
	}

	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return Parse(data, c)
}

// Parse decodes YAML onto cfg; keys missing from data keep their value
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	var errs []error

	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v := getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v := getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("PORT", &c.Port)
	str("DATA_DIR", &c.DataDir)
	str("LOG_LEVEL", &c.LogLevel)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	integer("REDIS_DB", &c.Redis.DB)
	str("JWT_SECRET", &c.Session.Secret)
	duration("SESSION_TTL", &c.Session.Expiration)
	str("VERIFY_BASE_URL", &c.Certificate.VerifyBaseURL)
	str("CURRENCY", &c.Certificate.Currency)
	str("ISSUER_NAME", &c.Certificate.IssuerName)
	boolean("CERT_YEAR_PREFIX", &c.Certificate.YearPrefix)
	integer("DEFAULT_VALIDITY_DAYS", &c.Certificate.DefaultValidityDays)
	duration("CACHE_TTL", &c.Cache.TTL)
	integer("RATE_LIMIT_PER_MIN", &c.RateLimit.PerMinute)
	integer("CERT_RATE_LIMIT_PER_MIN", &c.RateLimit.CertificatePerMinute)
	duration("REQUEST_TIMEOUT", &c.Security.RequestTimeout)
	boolean("ENABLE_HSTS", &c.Security.EnableHSTS)
	str("CSP_REPORT_URI", &c.Security.CSPReportURI)

	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		c.Security.AllowedOrigins = splitList(v)
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate rejects values the service cannot run with
func (c Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("port %q is not a valid TCP port", c.Port))
	}
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if strings.TrimSpace(c.Session.Secret) == "" {
		errs = append(errs, errors.New("session secret must not be empty"))
	}
	if c.Session.Expiration <= 0 {
		errs = append(errs, errors.New("session expiration must be positive"))
	}
	if len(c.Certificate.Currency) != 3 || strings.ToUpper(c.Certificate.Currency) != c.Certificate.Currency {
		errs = append(errs, fmt.Errorf("currency %q must be a three-letter upper-case code", c.Certificate.Currency))
	}
	if err := riskmodel.ValidateValidityDays(c.Certificate.DefaultValidityDays); err != nil {
		errs = append(errs, fmt.Errorf("default validity days: %w", err))
	}
	if c.Cache.TTL <= 0 || c.Cache.MaxItems <= 0 {
		errs = append(errs, errors.New("cache ttl and max_items must be positive"))
	}
	if c.RateLimit.PerMinute < 0 || c.RateLimit.CertificatePerMinute < 0 {
		errs = append(errs, errors.New("rate limits must not be negative"))
	}
	if c.Security.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	for _, origin := range c.Security.AllowedOrigins {
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			errs = append(errs, fmt.Errorf("allowed origin %q must start with http:// or https://", origin))
		}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}

	return errors.Join(errs...)
}

// UsesDefaultSecret reports whether the development secret is still active
func (c Config) UsesDefaultSecret() bool {
	return c.Session.Secret == DefaultJWTSecret
}
