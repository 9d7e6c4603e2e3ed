// Package config loads the rewards engine configuration from environment variables.
// envconfig maps variables onto struct fields; an optional .env file is read first.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Analytics sink selectors.
const (
	SinkPostgres = "postgres"
	SinkRedis    = "redis"
	SinkBoth     = "both"
	SinkNone     = "none"
)

// Config holds every setting of the application.
type Config struct {
	// --- Database ---
	// Inside docker-compose the database host is the service name, override DB_HOST=localhost locally.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"ecosignal"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"ecosignal"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Paris"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	// --- Admin ---
	// Argon2id hash, generate with scripts/generate_hash.go. Only the admin CLI needs it.
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`

	// --- Analytics ---
	AnalyticsSink          string        `envconfig:"ANALYTICS_SINK" default:"postgres"`
	AnalyticsBufferSize    int           `envconfig:"ANALYTICS_BUFFER_SIZE" default:"1024"`
	AnalyticsWriteTimeout  time.Duration `envconfig:"ANALYTICS_WRITE_TIMEOUT" default:"2s"`
	AnalyticsRetentionDays int           `envconfig:"ANALYTICS_RETENTION_DAYS" default:"180"`
	AnalyticsPurgeSchedule string        `envconfig:"ANALYTICS_PURGE_SCHEDULE" default:"30 3 * * *"`

	// --- Redis ---
	RedisURL     string `envconfig:"REDIS_URL" default:"redis://redis:6379/0"`
	RedisChannel string `envconfig:"REDIS_CHANNEL" default:"gamification-events"`
}

// DatabaseDSN returns the PostgreSQL connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// UsesPostgresSink reports whether analytics events are persisted to gamification_analytics.
func (c *Config) UsesPostgresSink() bool {
	return c.AnalyticsSink == SinkPostgres || c.AnalyticsSink == SinkBoth
}

// UsesRedisSink reports whether analytics events are published to Redis.
func (c *Config) UsesRedisSink() bool {
	return c.AnalyticsSink == SinkRedis || c.AnalyticsSink == SinkBoth
}

func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid DB_MIN_CONNS/DB_MAX_CONNS")
	}
	switch c.AnalyticsSink {
	case SinkPostgres, SinkRedis, SinkBoth, SinkNone:
	default:
		return fmt.Errorf("ANALYTICS_SINK must be one of postgres, redis, both, none (got %q)", c.AnalyticsSink)
	}
	if c.AnalyticsBufferSize <= 0 {
		return fmt.Errorf("ANALYTICS_BUFFER_SIZE must be > 0")
	}
	if c.AnalyticsWriteTimeout <= 0 {
		return fmt.Errorf("ANALYTICS_WRITE_TIMEOUT must be > 0")
	}
	if c.AnalyticsRetentionDays <= 0 {
		return fmt.Errorf("ANALYTICS_RETENTION_DAYS must be > 0")
	}
	if c.UsesRedisSink() && strings.TrimSpace(c.RedisURL) == "" {
		return fmt.Errorf("REDIS_URL is required when ANALYTICS_SINK=%s", c.AnalyticsSink)
	}
	return nil
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	cfg.AnalyticsSink = strings.ToLower(strings.TrimSpace(cfg.AnalyticsSink))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
