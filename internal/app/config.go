package app

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/odyssey-erp/soit-dashboard/internal/platform/cache"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development" validate:"oneof=development test production"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080" validate:"required"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty" validate:"oneof=pretty json"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379" validate:"required"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0" validate:"gte=0"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true" validate:"required"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true" validate:"required"`

	ReportSource string `envconfig:"REPORT_SOURCE" default:"file" validate:"oneof=file postgres none"`
	ReportPath   string `envconfig:"REPORT_PATH" default:"data/report.json" validate:"required_if=ReportSource file"`
	PGDSN        string `envconfig:"PG_DSN" validate:"required_if=ReportSource postgres"`

	ChartHeightPolicy string        `envconfig:"CHART_HEIGHT_POLICY" default:"clamped" validate:"oneof=clamped unbounded"`
	CacheTTL          time.Duration `envconfig:"CACHE_TTL" default:"10m"`
	PageIdleTTL       time.Duration `envconfig:"PAGE_IDLE_TTL" default:"30m"`
	WarmupOnStart     bool          `envconfig:"WARMUP_ON_START" default:"false"`
}

var configValidator = validator.New()

// LoadConfig reads configuration from environment variables. A .env file in
// the working directory, when present, fills variables not already set.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("app: load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := configValidator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("app: invalid config: %w", err)
	}
	return &cfg, nil
}

// RedisConfig returns the Redis client settings for service.
func (c *Config) RedisConfig(service string) cache.Config {
	return cache.Config{Addr: c.RedisAddr, DB: c.RedisDB, ClientName: "soit-" + service}
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
