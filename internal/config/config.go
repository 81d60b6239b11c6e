// ABOUTME: Configuration loading and parsing for atrium-gateway
// ABOUTME: YAML with environment variable expansion, plus a pure-env fallback

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete atrium-gateway configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds the caller-facing HTTP server configuration
type ServerConfig struct {
	HTTPAddr   string `yaml:"http_addr"`
	EnableCORS bool   `yaml:"enable_cors"`
}

// UpstreamConfig holds Admin API wiring.
//
// BaseURL may legitimately be empty at load time: absence is a
// configuration error surfaced as a 500 on every request by the
// gateway, never a process crash or a silent default URL.
type UpstreamConfig struct {
	BaseURL          string `yaml:"base_url"`
	SuperadminToken  string `yaml:"superadmin_token"`
	SuperadminEmails string `yaml:"superadmin_emails"` // comma-separated allow-list

	IdentityTimeout time.Duration `yaml:"-"`
	ForwardTimeout  time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	IdentityTimeoutRaw string `yaml:"identity_timeout"`
	ForwardTimeoutRaw  string `yaml:"forward_timeout"`
}

// DatabaseConfig holds the audit trail database configuration.
// An empty path disables the audit trail.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// MetricsConfig holds Prometheus exposition configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Environment variable names read by FromEnv and the env fallback.
const (
	EnvConfigPath       = "ATRIUM_CONFIG"
	EnvHTTPAddr         = "ATRIUM_HTTP_ADDR"
	EnvUpstreamURL      = "ADMIN_API_URL"
	EnvSuperadminToken  = "SUPERADMIN_API_TOKEN"
	EnvSuperadminEmails = "SUPERADMIN_EMAILS"
	EnvAuditDBPath      = "ATRIUM_AUDIT_DB"
)

// Load reads a configuration file from the given path and returns a
// parsed Config. Environment variables in the format ${VAR_NAME} are
// expanded. Duration strings are parsed into time.Duration values.
// If the file does not exist, configuration comes entirely from the
// process environment via FromEnv.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return FromEnv(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from the process environment alone.
func FromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			HTTPAddr: os.Getenv(EnvHTTPAddr),
		},
		Upstream: UpstreamConfig{
			BaseURL:          os.Getenv(EnvUpstreamURL),
			SuperadminToken:  os.Getenv(EnvSuperadminToken),
			SuperadminEmails: os.Getenv(EnvSuperadminEmails),
		},
		Database: DatabaseConfig{
			Path: os.Getenv(EnvAuditDBPath),
		},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills unset fields with working defaults.
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "0.0.0.0:8085"
	}
	if c.Upstream.IdentityTimeout == 0 {
		c.Upstream.IdentityTimeout = 10 * time.Second
	}
	if c.Upstream.ForwardTimeout == 0 {
		c.Upstream.ForwardTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. If the environment variable is not set,
// it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks configuration consistency. The upstream base URL is
// deliberately not required here; its absence is handled per request.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Upstream.IdentityTimeout < 0 {
		return fmt.Errorf("upstream.identity_timeout must not be negative")
	}
	if c.Upstream.ForwardTimeout < 0 {
		return fmt.Errorf("upstream.forward_timeout must not be negative")
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Upstream.IdentityTimeoutRaw != "" {
		cfg.Upstream.IdentityTimeout, err = time.ParseDuration(cfg.Upstream.IdentityTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing identity_timeout %q: %w", cfg.Upstream.IdentityTimeoutRaw, err)
		}
	}

	if cfg.Upstream.ForwardTimeoutRaw != "" {
		cfg.Upstream.ForwardTimeout, err = time.ParseDuration(cfg.Upstream.ForwardTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing forward_timeout %q: %w", cfg.Upstream.ForwardTimeoutRaw, err)
		}
	}

	return nil
}
