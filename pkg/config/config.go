// Package config provides configuration structures and loading for the
// substitution layer: exemption pattern lists, the debug flag, logging, and
// the optional metrics listener.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the full configuration.
type Config struct {
	// Debug enables structured reporting of every intercepted call.
	Debug bool `yaml:"debug"`

	// Exemptions maps a feature name to its ordered regex pattern list.
	// A caller URL matching any pattern bypasses interception for that
	// feature.
	Exemptions map[string][]string `yaml:"exemptions"`

	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig holds configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig holds configuration for the Prometheus scrape listener.
type MetricsConfig struct {
	Address string `yaml:"address"`
}

// Load reads configuration from a file, expands environment variables, and
// applies VEIL_* overrides. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		expanded := []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(expanded, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("VEIL_DEBUG"); val == "true" {
		cfg.Debug = true
	}
	if val := os.Getenv("VEIL_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("VEIL_METRICS_ADDR"); val != "" {
		cfg.Metrics.Address = val
	}
}

// Validate checks the whole configuration. Every exemption pattern must
// compile: a malformed pattern silently skipped would be an exemption-policy
// bug, so validation fails on the first one.
func (c *Config) Validate() error {
	for feature, patterns := range c.Exemptions {
		if strings.TrimSpace(feature) == "" {
			return fmt.Errorf("exemption feature name is required")
		}
		for _, pattern := range patterns {
			if _, err := regexp.Compile(pattern); err != nil {
				return fmt.Errorf("exemption pattern %q for feature %s: %w", pattern, feature, err)
			}
		}
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging configuration: %w", err)
	}

	return nil
}

// Validate normalizes and checks the logging configuration.
func (c *LoggingConfig) Validate() error {
	if strings.TrimSpace(c.Level) == "" {
		c.Level = "info"
	}

	level := strings.TrimSpace(strings.ToLower(c.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Level = level
		return nil
	default:
		return fmt.Errorf("invalid log level %q, supported levels: debug, info, warn, error", c.Level)
	}
}
