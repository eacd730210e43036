// Package config loads talabot's YAML configuration with environment
// overrides.
package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Config is the root configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram,omitempty"`
	Admin    AdminConfig    `yaml:"admin,omitempty"`
	Session  SessionConfig  `yaml:"session,omitempty"`
	Render   RenderConfig   `yaml:"render,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// TelegramConfig holds the transport credentials. Token supports ${VAR}
// expansion so the secret can stay in the environment.
type TelegramConfig struct {
	Token string `yaml:"token,omitempty"`
}

// AdminConfig names the fixed administrator identity that receives
// first-contact notifications. Empty disables them.
type AdminConfig struct {
	ChatID string `yaml:"chatId,omitempty"`
}

// SessionConfig controls dialog behavior.
type SessionConfig struct {
	// CommandPolicy decides what a menu command does while a dialog is
	// active: "ignore" | "abort" | "reinterpret".
	CommandPolicy string `yaml:"commandPolicy,omitempty"`
}

// RenderConfig controls artifact rendering.
type RenderConfig struct {
	// FontPath points at a TrueType font covering the Persian script, used
	// by the invoice image and the PDF export.
	FontPath string `yaml:"fontPath,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" .. "trace"
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Session: SessionConfig{
			CommandPolicy: "reinterpret",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports configuration problems that should stop startup.
func Validate(cfg *Config) []ConfigError {
	var issues []ConfigError
	switch cfg.Session.CommandPolicy {
	case "ignore", "abort", "reinterpret":
	default:
		issues = append(issues, ConfigError{
			Message: fmt.Sprintf("session.commandPolicy must be ignore, abort, or reinterpret, got %q", cfg.Session.CommandPolicy),
		})
	}
	return issues
}
