package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Upstream positions backend
	Upstream UpstreamConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// Monitor daemon configuration
	Monitor MonitorConfig

	// Logging configuration
	Log LogConfig
}

// UpstreamConfig holds connection settings for the positions backend
type UpstreamConfig struct {
	BaseURL        string        `envconfig:"UPSTREAM_BASE_URL" default:"http://localhost:8000"`
	RequestTimeout time.Duration `envconfig:"UPSTREAM_REQUEST_TIMEOUT" default:"30s"`
	MaxRetries     int           `envconfig:"UPSTREAM_MAX_RETRIES" default:"3"`
	RetryDelay     time.Duration `envconfig:"UPSTREAM_RETRY_DELAY" default:"1s"`

	// Wallets matching this prefix are served the demo fixture set
	// without contacting the backend
	DemoPrefix string `envconfig:"UPSTREAM_DEMO_PREFIX" default:"0xDemo"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"lpdash"`
	Password        string        `envconfig:"DB_PASSWORD" default:"lpdash"`
	Name            string        `envconfig:"DB_NAME" default:"lp_dashboard"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8081"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
	CacheTTL        time.Duration `envconfig:"API_CACHE_TTL" default:"2m"`
}

// MonitorConfig holds settings for the portfolio refresh daemon
type MonitorConfig struct {
	MetricsPort       int           `envconfig:"MONITOR_METRICS_PORT" default:"8080"`
	PollInterval      time.Duration `envconfig:"MONITOR_POLL_INTERVAL" default:"60s"`
	WorkerCount       int           `envconfig:"MONITOR_WORKER_COUNT" default:"4"`
	SnapshotRetention time.Duration `envconfig:"MONITOR_SNAPSHOT_RETENTION" default:"168h"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
