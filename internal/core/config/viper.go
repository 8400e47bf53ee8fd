package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*EngineConfig, error) {
	v := viper.New()

	// Defaults matching DefaultEngineConfig
	v.SetDefault("engine.database_url", "sqlite://caseminder.db")
	v.SetDefault("engine.tick_interval", "1m")
	v.SetDefault("engine.tick_grace", "30s")
	v.SetDefault("engine.action_timeout", "10s")
	v.SetDefault("engine.refire", "always")
	v.SetDefault("engine.retention_window", "2160h")
	v.SetDefault("engine.log_level", "info")
	v.SetDefault("engine.log_format", "json")

	// Bind environment variables with CM_ prefix
	v.SetEnvPrefix("CM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &EngineConfig{
		DatabaseURL:     v.GetString("engine.database_url"),
		TickInterval:    v.GetDuration("engine.tick_interval"),
		TickGrace:       v.GetDuration("engine.tick_grace"),
		ActionTimeout:   v.GetDuration("engine.action_timeout"),
		Refire:          v.GetString("engine.refire"),
		RetentionWindow: v.GetDuration("engine.retention_window"),
		LogLevel:        v.GetString("engine.log_level"),
		LogFormat:       v.GetString("engine.log_format"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
