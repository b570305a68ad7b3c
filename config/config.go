// Package config provides configuration loading, validation, and hot reload.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`
	Auth     AuthConfig     `yaml:"auth" envPrefix:"AUTH_"`
	Admin    AdminConfig    `yaml:"admin" envPrefix:"ADMIN_"`
	Logging  LoggingConfig  `yaml:"logging" envPrefix:"LOG_"`
	Metrics  MetricsConfig  `yaml:"metrics" envPrefix:"METRICS_"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host" env:"HOST"`
	Port         int           `yaml:"port" env:"PORT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
}

// DatabaseConfig configures the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// AuthConfig configures token signing.
type AuthConfig struct {
	// JWTSecret signs admin bearer tokens. Empty means a random secret is
	// generated at startup, which invalidates tokens across restarts.
	JWTSecret       string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenExpiration time.Duration `yaml:"token_expiration" env:"TOKEN_EXPIRATION"`
}

// AdminConfig configures the bootstrap admin account seeded on first run.
type AdminConfig struct {
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`
	Email    string `yaml:"email" env:"EMAIL"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format" env:"FORMAT"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"ENABLED"`
}

// Load reads configuration from a YAML file, then applies FORMWORKS_*
// environment variable overrides on top.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand ${VAR} references inside the YAML itself
	data = []byte(os.ExpandEnv(string(data)))

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadFromEnv creates configuration entirely from FORMWORKS_* environment
// variables. Useful for container deployments where no config file exists.
//
// Environment variables:
//
//	FORMWORKS_SERVER_HOST           - Server host (default: 0.0.0.0)
//	FORMWORKS_SERVER_PORT           - Server port (default: 8080)
//	FORMWORKS_DATABASE_PATH         - SQLite path (default: formworks.db)
//	FORMWORKS_AUTH_JWT_SECRET       - Token signing secret
//	FORMWORKS_AUTH_TOKEN_EXPIRATION - Token lifetime (default: 24h)
//	FORMWORKS_ADMIN_USERNAME        - Bootstrap admin username (default: admin)
//	FORMWORKS_ADMIN_PASSWORD        - Bootstrap admin password
//	FORMWORKS_LOG_LEVEL             - Log level (default: info)
//	FORMWORKS_LOG_FORMAT            - json or console (default: json)
//	FORMWORKS_METRICS_ENABLED       - Enable /metrics (default: true)
func LoadFromEnv() (*Config, error) {
	cfg := defaults()
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadWithFallback tries the config file first, then environment variables.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

func applyEnvOverrides(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "FORMWORKS_"}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "formworks.db",
		},
		Auth: AuthConfig{
			TokenExpiration: 24 * time.Hour,
		},
		Admin: AdminConfig{
			Username: "admin",
			Password: "admin123",
			Email:    "admin@example.com",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", cfg.Logging.Format)
	}
	if cfg.Auth.TokenExpiration <= 0 {
		return fmt.Errorf("auth.token_expiration must be positive")
	}
	if cfg.Admin.Username == "" {
		return fmt.Errorf("admin.username is required")
	}
	return nil
}

// Addr returns the host:port the server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
