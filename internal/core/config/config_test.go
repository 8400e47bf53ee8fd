package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}

	want := DefaultEngineConfig()
	if cfg.DatabaseURL != want.DatabaseURL {
		t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, want.DatabaseURL)
	}
	if cfg.TickInterval != want.TickInterval {
		t.Errorf("TickInterval = %v, want %v", cfg.TickInterval, want.TickInterval)
	}
	if cfg.TickGrace != want.TickGrace {
		t.Errorf("TickGrace = %v, want %v", cfg.TickGrace, want.TickGrace)
	}
	if cfg.ActionTimeout != want.ActionTimeout {
		t.Errorf("ActionTimeout = %v, want %v", cfg.ActionTimeout, want.ActionTimeout)
	}
	if cfg.Refire != "always" {
		t.Errorf("Refire = %q, want always", cfg.Refire)
	}
	if cfg.RetentionWindow != 90*24*time.Hour {
		t.Errorf("RetentionWindow = %v, want 90 days", cfg.RetentionWindow)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Errorf("logging = %q/%q, want info/json", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
engine:
  database_url: postgres://localhost/caseminder
  tick_interval: 30s
  refire: once
  log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/caseminder" {
		t.Errorf("DatabaseURL = %q, want file value", cfg.DatabaseURL)
	}
	if cfg.TickInterval != 30*time.Second {
		t.Errorf("TickInterval = %v, want 30s", cfg.TickInterval)
	}
	if cfg.Refire != "once" {
		t.Errorf("Refire = %q, want once", cfg.Refire)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	// Unset keys keep their defaults.
	if cfg.TickGrace != 30*time.Second {
		t.Errorf("TickGrace = %v, want default 30s", cfg.TickGrace)
	}
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("CM_ENGINE_REFIRE", "once")
	t.Setenv("CM_ENGINE_LOG_FORMAT", "console")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}
	if cfg.Refire != "once" {
		t.Errorf("Refire = %q, want env override once", cfg.Refire)
	}
	if cfg.LogFormat != "console" {
		t.Errorf("LogFormat = %q, want env override console", cfg.LogFormat)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Fatalf("LoadConfig(missing file) error = nil, want error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*EngineConfig)
		wantErr bool
	}{
		{"defaults valid", func(cfg *EngineConfig) {}, false},
		{"empty database url", func(cfg *EngineConfig) { cfg.DatabaseURL = "" }, true},
		{"zero tick interval", func(cfg *EngineConfig) { cfg.TickInterval = 0 }, true},
		{"negative grace", func(cfg *EngineConfig) { cfg.TickGrace = -time.Second }, true},
		{"zero action timeout", func(cfg *EngineConfig) { cfg.ActionTimeout = 0 }, true},
		{"bad refire", func(cfg *EngineConfig) { cfg.Refire = "sometimes" }, true},
		{"zero retention", func(cfg *EngineConfig) { cfg.RetentionWindow = 0 }, true},
		{"bad log level", func(cfg *EngineConfig) { cfg.LogLevel = "verbose" }, true},
		{"bad log format", func(cfg *EngineConfig) { cfg.LogFormat = "xml" }, true},
		{"refire once valid", func(cfg *EngineConfig) { cfg.Refire = "once" }, false},
		{"console format valid", func(cfg *EngineConfig) { cfg.LogFormat = "console" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
