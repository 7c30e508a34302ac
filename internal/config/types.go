package config

import "time"

// Config represents the main configuration structure
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Privacy    PrivacyConfig    `yaml:"privacy" mapstructure:"privacy"`
	Audit      AuditConfig      `yaml:"audit" mapstructure:"audit"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Compliance ComplianceConfig `yaml:"compliance" mapstructure:"compliance"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
	WebSocket  WebSocketConfig  `yaml:"websocket" mapstructure:"websocket"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	RateLimit    struct {
		Enabled           bool    `yaml:"enabled" mapstructure:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
		Burst             float64 `yaml:"burst" mapstructure:"burst"`
	} `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// PrivacyConfig contains PII detection and redaction configuration
type PrivacyConfig struct {
	Region   string `yaml:"region" mapstructure:"region"`     // UK, EU, or COMMON
	Level    string `yaml:"level" mapstructure:"level"`       // strict, moderate, or lenient
	Strategy string `yaml:"strategy" mapstructure:"strategy"` // token, hash, or category
}

// AuditConfig contains audit trail storage configuration
type AuditConfig struct {
	Backend       string `yaml:"backend" mapstructure:"backend"` // memory, sqlite, or postgres
	SQLitePath    string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	DatabaseURL   string `yaml:"database_url" mapstructure:"database_url"`
	MaxOpenConns  int    `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns  int    `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	RetentionDays int    `yaml:"retention_days" mapstructure:"retention_days"`
}

// CacheConfig contains the redis detection-metadata cache configuration
type CacheConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	RedisURL       string        `yaml:"redis_url" mapstructure:"redis_url"`
	MaxConnections int           `yaml:"max_connections" mapstructure:"max_connections"`
	MinIdleConns   int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DefaultTTL     time.Duration `yaml:"default_ttl" mapstructure:"default_ttl"`
	KeyPrefix      string        `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// ComplianceConfig contains compliance check configuration
type ComplianceConfig struct {
	RetentionDays   int `yaml:"retention_days" mapstructure:"retention_days"`
	CheckPeriodDays int `yaml:"check_period_days" mapstructure:"check_period_days"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
		Path     string `yaml:"path" mapstructure:"path"`
		MaxSize  int    `yaml:"max_size" mapstructure:"max_size"`
		MaxAge   int    `yaml:"max_age" mapstructure:"max_age"`
		Compress bool   `yaml:"compress" mapstructure:"compress"`
	} `yaml:"file" mapstructure:"file"`
}

// WebSocketConfig contains the event feed configuration
type WebSocketConfig struct {
	Enabled        bool     `yaml:"enabled" mapstructure:"enabled"`
	Path           string   `yaml:"path" mapstructure:"path"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// GetDefaults returns a configuration populated with default values
func GetDefaults() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Privacy: PrivacyConfig{
			Region:   "UK",
			Level:    "strict",
			Strategy: "token",
		},
		Audit: AuditConfig{
			Backend:       "memory",
			SQLitePath:    "audit_log.db",
			MaxOpenConns:  10,
			MaxIdleConns:  5,
			RetentionDays: 2555, // ~7 years
		},
		Cache: CacheConfig{
			Enabled:        false,
			RedisURL:       "redis://localhost:6379/0",
			MaxConnections: 10,
			MinIdleConns:   2,
			DefaultTTL:     time.Hour,
			KeyPrefix:      "gdprsafe",
		},
		Compliance: ComplianceConfig{
			RetentionDays:   2555,
			CheckPeriodDays: 90,
		},
		WebSocket: WebSocketConfig{
			Enabled: true,
			Path:    "/ws",
		},
	}

	cfg.Server.RateLimit.Enabled = true
	cfg.Server.RateLimit.RequestsPerSecond = 50
	cfg.Server.RateLimit.Burst = 100

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	return cfg
}
