package config

import (
	"fmt"
	"time"

	"github.com/tasktrack/apiserver/pkg/config"
	"github.com/tasktrack/apiserver/pkg/database"
)

const defaultSecretKey = "your-secret-key-here-change-in-production"

// Config holds all configuration for the task tracker API server.
type Config struct {
	AppName     string `env:"APP_NAME" envDefault:"Task Tracker API"`
	AppVersion  string `env:"APP_VERSION" envDefault:"1.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8000"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"tasktracker"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"tasktracker_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"task_tracker_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	PoolMaxConns int32 `env:"POSTGRES_POOL_MAX_CONNS" envDefault:"25"`
	PoolMinConns int32 `env:"POSTGRES_POOL_MIN_CONNS" envDefault:"5"`

	// JWT
	SecretKey              string `env:"SECRET_KEY" envDefault:"your-secret-key-here-change-in-production"`
	Algorithm              string `env:"ALGORITHM" envDefault:"HS256"`
	AccessTokenExpireMins  int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	RefreshTokenExpireDays int    `env:"REFRESH_TOKEN_EXPIRE_DAYS" envDefault:"7"`

	// CORS
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://localhost:8000" envSeparator:","`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}

	// Only HS256 is supported; the token codec signs with a symmetric key.
	if cfg.Algorithm != "HS256" {
		return nil, fmt.Errorf("unsupported token algorithm %q, only HS256 is supported", cfg.Algorithm)
	}
	if cfg.AccessTokenExpireMins < 1 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", cfg.AccessTokenExpireMins)
	}

	// Outside development, require an explicitly set, strong secret.
	if cfg.Environment != "development" {
		if cfg.SecretKey == defaultSecretKey {
			return nil, fmt.Errorf("SECRET_KEY must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.SecretKey) < 32 {
			return nil, fmt.Errorf("SECRET_KEY must be at least 32 characters long, got %d", len(cfg.SecretKey))
		}
	}

	return cfg, nil
}

// Postgres returns the connection pool configuration.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	pg.MaxConns = c.PoolMaxConns
	pg.MinConns = c.PoolMinConns
	return pg
}

// AccessTokenTTL returns the access token lifetime.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMins) * time.Minute
}

// RefreshTokenTTL returns the configured refresh token lifetime. There is no
// refresh flow yet; the knob is read so that deployments can set it ahead of
// time.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpireDays) * 24 * time.Hour
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
