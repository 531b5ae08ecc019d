package config

import (
	"encoding/json"
	"fmt"
)

// Config represents the main Toolbridge configuration
type Config struct {
	// HTTP server
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Authentication
	Auth AuthConfig `json:"auth" mapstructure:"auth"`

	// Dispatch behaviour
	Dispatch DispatchConfig `json:"dispatch" mapstructure:"dispatch"`

	// Upstream media automation server backing the builtin tools
	Upstream UpstreamConfig `json:"upstream" mapstructure:"upstream"`

	// Plugin manifests
	Plugins PluginsConfig `json:"plugins" mapstructure:"plugins"`

	// Audit trail
	Audit AuditConfig `json:"audit" mapstructure:"audit"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Metrics endpoint
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`

	// Websocket event stream
	Events EventsConfig `json:"events" mapstructure:"events"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host               string `json:"host" mapstructure:"host"`
	Port               int    `json:"port" mapstructure:"port"`
	APIKeyHeader       string `json:"api_key_header" mapstructure:"api_key_header"`
	APIKeyQuery        string `json:"api_key_query" mapstructure:"api_key_query"`
	RateLimitPerMinute int    `json:"rate_limit_per_minute" mapstructure:"rate_limit_per_minute"`
}

// AuthConfig holds caller authentication configuration
type AuthConfig struct {
	APIKey      string            `json:"api_key" mapstructure:"api_key"`
	ServiceUser string            `json:"service_user" mapstructure:"service_user"`
	Tokens      map[string]string `json:"tokens" mapstructure:"tokens"` // bearer token -> user id
}

// DispatchConfig holds tool dispatch configuration
type DispatchConfig struct {
	TimeoutSeconds   int  `json:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxConcurrent    int  `json:"max_concurrent" mapstructure:"max_concurrent"`
	StrictValidation bool `json:"strict_validation" mapstructure:"strict_validation"`
}

// UpstreamConfig holds the upstream server connection
type UpstreamConfig struct {
	URL            string `json:"url" mapstructure:"url"`
	Token          string `json:"token" mapstructure:"token"`
	TimeoutSeconds int    `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// PluginsConfig holds plugin manifest configuration
type PluginsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Dir     string `json:"dir" mapstructure:"dir"`
	Watch   bool   `json:"watch" mapstructure:"watch"`
}

// AuditConfig holds audit trail configuration
type AuditConfig struct {
	Enabled       bool   `json:"enabled" mapstructure:"enabled"`
	Path          string `json:"path" mapstructure:"path"`
	RetentionDays int    `json:"retention_days" mapstructure:"retention_days"`
	PruneSchedule string `json:"prune_schedule" mapstructure:"prune_schedule"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	MaxSize   int    `json:"max_size" mapstructure:"max_size"` // MB
	MaxAge    int    `json:"max_age" mapstructure:"max_age"`   // days
	Compress  bool   `json:"compress" mapstructure:"compress"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// EventsConfig holds websocket event stream configuration
type EventsConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               3001,
			APIKeyHeader:       "X-API-Key",
			APIKeyQuery:        "apikey",
			RateLimitPerMinute: 100,
		},
		Auth: AuthConfig{
			ServiceUser: "api_user",
			Tokens:      map[string]string{},
		},
		Dispatch: DispatchConfig{
			TimeoutSeconds: 30,
			MaxConcurrent:  16,
		},
		Upstream: UpstreamConfig{
			TimeoutSeconds: 20,
		},
		Plugins: PluginsConfig{
			Enabled: true,
			Watch:   true,
		},
		Audit: AuditConfig{
			Enabled:       true,
			RetentionDays: 30,
			PruneSchedule: "0 3 * * *",
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSize:   100,
			MaxAge:    7,
			Compress:  true,
			Redaction: true,
		},
		Metrics: MetricsConfig{Enabled: true},
		Events:  EventsConfig{Enabled: true},
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Auth.APIKey == "" && len(c.Auth.Tokens) == 0 {
		return fmt.Errorf("no credentials configured: an API key or at least one bearer token is required")
	}

	for token, user := range c.Auth.Tokens {
		if token == "" {
			return fmt.Errorf("bearer tokens cannot be empty")
		}
		if user == "" {
			return fmt.Errorf("bearer token %s...: user id is required", token[:min(4, len(token))])
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Dispatch.TimeoutSeconds <= 0 {
		return fmt.Errorf("dispatch timeout must be positive, got %d", c.Dispatch.TimeoutSeconds)
	}
	if c.Dispatch.MaxConcurrent <= 0 {
		return fmt.Errorf("dispatch max_concurrent must be positive, got %d", c.Dispatch.MaxConcurrent)
	}

	if c.Plugins.Enabled && c.Plugins.Dir == "" {
		return fmt.Errorf("plugins dir is required when plugins are enabled")
	}

	if c.Audit.Enabled {
		if c.Audit.Path == "" {
			return fmt.Errorf("audit path is required when the audit trail is enabled")
		}
		if c.Audit.RetentionDays < 0 {
			return fmt.Errorf("audit retention_days must be >= 0, got %d", c.Audit.RetentionDays)
		}
	}

	return nil
}
