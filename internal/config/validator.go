package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAPIKey validates the shared API key
func (v *Validator) ValidateAPIKey(key string) error {
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	if len(key) < 16 {
		return fmt.Errorf("API key is too short (minimum 16 characters)")
	}
	if strings.TrimSpace(key) != key {
		return fmt.Errorf("API key cannot contain leading or trailing whitespace")
	}
	return nil
}

// ValidatePort validates a TCP port number
func (v *Validator) ValidatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", port)
	}
	return nil
}

// ValidateUpstreamURL validates the upstream server URL
func (v *Validator) ValidateUpstreamURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("upstream URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid upstream URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("upstream URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("upstream URL is missing a host")
	}
	return nil
}

// ValidateCronSchedule validates a cron expression
func (v *Validator) ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("cron schedule cannot be empty")
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	if cfg.Auth.APIKey != "" {
		if err := v.ValidateAPIKey(cfg.Auth.APIKey); err != nil {
			errors = append(errors, err)
		}
	}

	if err := v.ValidatePort(cfg.Server.Port); err != nil {
		errors = append(errors, err)
	}
	if cfg.Server.RateLimitPerMinute < 0 {
		errors = append(errors, fmt.Errorf("server rate_limit_per_minute must be >= 0"))
	}

	if cfg.Upstream.URL != "" {
		if err := v.ValidateUpstreamURL(cfg.Upstream.URL); err != nil {
			errors = append(errors, err)
		}
		if cfg.Upstream.TimeoutSeconds <= 0 {
			errors = append(errors, fmt.Errorf("upstream timeout_seconds must be positive"))
		}
	}

	if cfg.Audit.Enabled {
		if err := v.ValidateCronSchedule(cfg.Audit.PruneSchedule); err != nil {
			errors = append(errors, err)
		}
	}

	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}

	return errors
}
