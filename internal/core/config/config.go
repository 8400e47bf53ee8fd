// Package config provides configuration management for the caseminder
// engine.
package config

import (
	"fmt"
	"time"
)

// EngineConfig holds configuration for the automation engine process.
type EngineConfig struct {
	DatabaseURL     string
	TickInterval    time.Duration
	TickGrace       time.Duration
	ActionTimeout   time.Duration
	Refire          string
	RetentionWindow time.Duration
	LogLevel        string
	LogFormat       string
}

// DefaultEngineConfig returns configuration with default values.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		DatabaseURL:     "sqlite://caseminder.db",
		TickInterval:    time.Minute,
		TickGrace:       30 * time.Second,
		ActionTimeout:   10 * time.Second,
		Refire:          "always",
		RetentionWindow: 90 * 24 * time.Hour,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// Validate checks field ranges and enumerations.
func (cfg *EngineConfig) Validate() error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url must not be empty")
	}
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %v", cfg.TickInterval)
	}
	if cfg.TickGrace <= 0 {
		return fmt.Errorf("tick_grace must be positive, got %v", cfg.TickGrace)
	}
	if cfg.ActionTimeout <= 0 {
		return fmt.Errorf("action_timeout must be positive, got %v", cfg.ActionTimeout)
	}
	if cfg.Refire != "always" && cfg.Refire != "once" {
		return fmt.Errorf("refire must be 'always' or 'once', got %q", cfg.Refire)
	}
	if cfg.RetentionWindow <= 0 {
		return fmt.Errorf("retention_window must be positive, got %v", cfg.RetentionWindow)
	}
	switch cfg.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of trace, debug, info, warn, error, got %q", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("log_format must be 'json' or 'console', got %q", cfg.LogFormat)
	}
	return nil
}
