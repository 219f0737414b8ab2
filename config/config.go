package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Log       LogConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Lifecycle LifecycleConfig
	Catalog   CatalogConfig
}

type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	GinMode         string        `env:"GIN_MODE" envDefault:"debug"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type DatabaseConfig struct {
	URL             string        `env:"DB_URL,notEmpty"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	LogLevel        string        `env:"DB_LOG_LEVEL" envDefault:"warn"`
	SlowThreshold   time.Duration `env:"DB_SLOW_THRESHOLD" envDefault:"1s"`
}

type JWTConfig struct {
	Secret      string `env:"JWT_SECRET,notEmpty"`
	ExpiryHours int    `env:"JWT_EXPIRY_HOURS" envDefault:"24"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

type RateLimitConfig struct {
	PerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`
	Burst     int `env:"RATE_LIMIT_BURST" envDefault:"40"`
}

// LifecycleConfig tunes side effects of solicitation transitions.
type LifecycleConfig struct {
	NotifyAutoRejected bool `env:"NOTIFY_AUTO_REJECTED" envDefault:"true"`
}

type CatalogConfig struct {
	Seed bool `env:"SEED_CATALOG" envDefault:"false"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.JWT.ExpiryHours <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRY_HOURS must be positive, got %d", cfg.JWT.ExpiryHours)
	}
	if cfg.RateLimit.PerMinute <= 0 || cfg.RateLimit.Burst <= 0 {
		return nil, fmt.Errorf("rate limit settings must be positive")
	}
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	return &cfg, nil
}

func (c ServerConfig) IsRelease() bool {
	return c.GinMode == "release"
}
