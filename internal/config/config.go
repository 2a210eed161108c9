// Package config loads and validates the hub web front-end configuration using Viper.
//
// Configuration is layered: built-in defaults < YAML config file < environment
// variables. Environment variables use the HUBWEB_ prefix (e.g., HUBWEB_API_BASE_URL
// overrides api.base_url in the YAML). The same binary runs with a config.yaml in
// local development and with pure environment variables in containers.
//
// HUBWEB_PREFS_SECRET has no nested key because it is usually injected as a
// standalone secret; it overrides session.prefs_secret when present.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	API       APIConfig       `mapstructure:"api"`
	Session   SessionConfig   `mapstructure:"session"`
	Security  SecurityConfig  `mapstructure:"security"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	UI        UIConfig        `mapstructure:"ui"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	BaseURL      string        `mapstructure:"base_url"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// APIConfig points the front-end at the hub REST API.
type APIConfig struct {
	// BaseURL is the scheme and host of the hub API server (e.g. https://hub.example.com)
	BaseURL string `mapstructure:"base_url"`
	// EndpointPrefix is prepended to the versioned path, for deployments that
	// serve the API under a sub path.
	EndpointPrefix string `mapstructure:"endpoint_prefix"`
	// DNSRefresh is how often cached DNS entries for the API host are refreshed
	DNSRefresh time.Duration `mapstructure:"dns_refresh"`
}

// SessionConfig holds browser session configuration
type SessionConfig struct {
	// Store is the server-side session store: "memory" or "redis"
	Store       string        `mapstructure:"store"`
	CookieName  string        `mapstructure:"cookie_name"`
	PrefsCookie string        `mapstructure:"prefs_cookie"`
	PrefsSecret string        `mapstructure:"prefs_secret"`
	TTL         time.Duration `mapstructure:"ttl"`
	Secure      bool          `mapstructure:"secure"`
	Redis       RedisConfig   `mapstructure:"redis"`
}

// RedisConfig holds Redis connection settings shared by the session store and
// the distributed rate limiter.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting"`
	TLS          TLSConfig          `mapstructure:"tls"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
}

// RateLimitingConfig holds rate limiting configuration
type RateLimitingConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
	// Backend is "memory" (per instance) or "redis" (shared, uses session.redis)
	Backend string `mapstructure:"backend"`
}

// TLSConfig holds TLS/HTTPS configuration
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	ServiceName string          `mapstructure:"service_name"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
	Profiling   ProfilingConfig `mapstructure:"profiling"`
}

// MetricsConfig holds Prometheus metrics configuration
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PrometheusPort int  `mapstructure:"prometheus_port"`
}

// ProfilingConfig holds profiling configuration
type ProfilingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// UIConfig holds page rendering options
type UIConfig struct {
	// SampleQueriesFile optionally replaces the built-in sample queries (YAML)
	SampleQueriesFile string `mapstructure:"sample_queries_file"`
	// SampleQueriesCount is how many sample queries the home page shows
	SampleQueriesCount int `mapstructure:"sample_queries_count"`
	// SearchLimit is the default page size for search results
	SearchLimit int `mapstructure:"search_limit"`
	// RepositoriesLimit is the page size of the control panel repository list
	RepositoriesLimit int `mapstructure:"repositories_limit"`
}

// bindEnvVars explicitly binds environment variables to config keys.
// AutomaticEnv() alone does not populate nested structs during Unmarshal.
func bindEnvVars(v *viper.Viper) error {
	keys := []string{
		// Server
		"server.host",
		"server.port",
		"server.base_url",
		"server.read_timeout",
		"server.write_timeout",

		// API
		"api.base_url",
		"api.endpoint_prefix",
		"api.dns_refresh",

		// Session
		"session.store",
		"session.cookie_name",
		"session.prefs_cookie",
		"session.prefs_secret",
		"session.ttl",
		"session.secure",
		"session.redis.addr",
		"session.redis.password",
		"session.redis.db",
		"session.redis.key_prefix",

		// Security
		"security.cors.allowed_origins",
		"security.cors.allowed_methods",
		"security.rate_limiting.enabled",
		"security.rate_limiting.requests_per_minute",
		"security.rate_limiting.burst",
		"security.rate_limiting.backend",
		"security.tls.enabled",
		"security.tls.cert_file",
		"security.tls.key_file",

		// Logging
		"logging.level",
		"logging.format",

		// Telemetry
		"telemetry.service_name",
		"telemetry.metrics.enabled",
		"telemetry.metrics.prometheus_port",
		"telemetry.profiling.enabled",
		"telemetry.profiling.port",

		// UI
		"ui.sample_queries_file",
		"ui.sample_queries_count",
		"ui.search_limit",
		"ui.repositories_limit",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env var %q: %w", key, err)
		}
	}
	return nil
}

// newViper builds a viper instance with defaults, the config file location and
// environment bindings applied.
func newViper(configPath string) (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/hub-web")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment variables
	}

	v.SetEnvPrefix("HUBWEB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}
	return v, nil
}

// decode unmarshals and validates the current state of v.
func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Expand environment variables in sensitive fields
	cfg.Session.PrefsSecret = expandEnv(cfg.Session.PrefsSecret)
	cfg.Session.Redis.Password = expandEnv(cfg.Session.Redis.Password)
	if secret := os.Getenv("HUBWEB_PREFS_SECRET"); secret != "" {
		cfg.Session.PrefsSecret = secret
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// Watch loads the configuration and then keeps watching the config file. Every
// time the file changes and the new content is valid, onChange receives the
// reloaded configuration. Invalid edits are reported through onError and the
// previous configuration stays in effect.
func Watch(configPath string, onChange func(*Config), onError func(error)) (*Config, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if v.ConfigFileUsed() == "" {
		return cfg, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		reloaded, err := decode(v)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reloading %s: %w", e.Name, err))
			}
			return
		}
		onChange(reloaded)
	})
	v.WatchConfig()
	return cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")

	// API defaults
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.endpoint_prefix", "")
	v.SetDefault("api.dns_refresh", "5m")

	// Session defaults
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.cookie_name", "hubweb_session")
	v.SetDefault("session.prefs_cookie", "hubweb_prefs")
	v.SetDefault("session.ttl", "720h")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.redis.db", 0)
	v.SetDefault("session.redis.key_prefix", "hubweb:")

	// Security defaults
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("security.rate_limiting.enabled", true)
	v.SetDefault("security.rate_limiting.requests_per_minute", 300)
	v.SetDefault("security.rate_limiting.burst", 60)
	v.SetDefault("security.rate_limiting.backend", "memory")
	v.SetDefault("security.tls.enabled", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Telemetry defaults
	v.SetDefault("telemetry.service_name", "hub-web")
	v.SetDefault("telemetry.metrics.enabled", true)
	v.SetDefault("telemetry.metrics.prometheus_port", 9090)
	v.SetDefault("telemetry.profiling.enabled", false)
	v.SetDefault("telemetry.profiling.port", 6060)

	// UI defaults
	v.SetDefault("ui.sample_queries_file", "")
	v.SetDefault("ui.sample_queries_count", 5)
	v.SetDefault("ui.search_limit", 60)
	v.SetDefault("ui.repositories_limit", 10)
}

// expandEnv expands environment variables in the format ${VAR_NAME}
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Validate API
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute http(s) URL: %q", c.API.BaseURL)
	}

	// Validate session store
	switch c.Session.Store {
	case "memory":
	case "redis":
		if c.Session.Redis.Addr == "" {
			return fmt.Errorf("session.redis.addr is required when using the redis session store")
		}
	default:
		return fmt.Errorf("invalid session store: %s (must be memory or redis)", c.Session.Store)
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name is required")
	}

	// Validate rate limiting backend
	if c.Security.RateLimiting.Enabled {
		switch c.Security.RateLimiting.Backend {
		case "memory":
		case "redis":
			if c.Session.Redis.Addr == "" {
				return fmt.Errorf("session.redis.addr is required when rate limiting uses redis")
			}
		default:
			return fmt.Errorf("invalid rate limiting backend: %s (must be memory or redis)", c.Security.RateLimiting.Backend)
		}
	}

	// Validate TLS if enabled
	if c.Security.TLS.Enabled {
		if c.Security.TLS.CertFile == "" {
			return fmt.Errorf("security.tls.cert_file is required when TLS is enabled")
		}
		if c.Security.TLS.KeyFile == "" {
			return fmt.Errorf("security.tls.key_file is required when TLS is enabled")
		}
	}

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	return nil
}

// GetAddress returns the server address in host:port format
func (c *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Endpoint returns the versioned REST endpoint the API client talks to.
func (c *APIConfig) Endpoint() string {
	base := strings.TrimRight(c.BaseURL, "/")
	prefix := strings.Trim(c.EndpointPrefix, "/")
	if prefix != "" {
		base += "/" + prefix
	}
	return base + "/api/v1"
}
