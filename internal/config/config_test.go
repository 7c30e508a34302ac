package config

import (
	"strings"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	cfg := GetDefaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Privacy.Region != "UK" || cfg.Privacy.Level != "strict" || cfg.Privacy.Strategy != "token" {
		t.Errorf("privacy defaults = %+v", cfg.Privacy)
	}
	if cfg.Audit.Backend != "memory" {
		t.Errorf("audit backend = %q", cfg.Audit.Backend)
	}
	if cfg.Audit.RetentionDays != 2555 {
		t.Errorf("retention_days = %d", cfg.Audit.RetentionDays)
	}

	if err := validateConfig(cfg); err != nil {
		t.Errorf("defaults fail validation: %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"BadPort", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"BadLevel", func(c *Config) { c.Privacy.Level = "paranoid" }, "invalid detection level"},
		{"BadStrategy", func(c *Config) { c.Privacy.Strategy = "rot13" }, "invalid redaction strategy"},
		{"BadBackend", func(c *Config) { c.Audit.Backend = "etcd" }, "invalid audit backend"},
		{"PostgresWithoutURL", func(c *Config) { c.Audit.Backend = "postgres" }, "requires database_url"},
		{"BadRetention", func(c *Config) { c.Audit.RetentionDays = 0 }, "retention_days"},
		{"BadLogLevel", func(c *Config) { c.Logging.Level = "verbose" }, "invalid log level"},
		{"BadLogFormat", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaults()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
