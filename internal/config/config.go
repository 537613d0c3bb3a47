package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string   `env:"ADDR" envDefault:":8080"`
	Env         string   `env:"ENV" envDefault:"development"`
	APIURL      string   `env:"EXTERNAL_URL" envDefault:"localhost:8080"`
	FrontendURL string   `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"https://*,http://*"`

	DB          DB
	Auth        Auth
	RateLimiter RateLimiter
}

type DB struct {
	Addr        string `env:"DB_ADDR,required"`
	MaxConns    int    `env:"DB_MAX_CONNS" envDefault:"30"`
	MaxIdleTime string `env:"DB_MAX_IDLE_TIME" envDefault:"15m"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

type Auth struct {
	Secret          string        `env:"AUTH_TOKEN_SECRET,required"`
	RefreshSecret   string        `env:"AUTH_TOKEN_REFRESH_SECRET,required"`
	Issuer          string        `env:"AUTH_TOKEN_ISS" envDefault:"snackspot"`
	AccessTokenExp  time.Duration `env:"AUTH_ACCESS_TTL" envDefault:"15m"`
	RefreshTokenExp time.Duration `env:"AUTH_REFRESH_TTL" envDefault:"168h"`
	BasicUser       string        `env:"AUTH_BASIC_USER" envDefault:"admin"`
	BasicPass       string        `env:"AUTH_BASIC_PASS,required"`
}

type RateLimiter struct {
	RequestsPerTimeFrame int           `env:"RATELIMITER_REQUESTS_COUNT" envDefault:"200"`
	TimeFrame            time.Duration `env:"RATELIMITER_TIMEFRAME" envDefault:"5s"`
	Enabled              bool          `env:"RATE_LIMITER_ENABLED" envDefault:"true"`
	AuthPerSecond        float64       `env:"AUTH_RATE_PER_SECOND" envDefault:"1"`
	AuthBurst            int           `env:"AUTH_RATE_BURST" envDefault:"5"`
}

// Load reads a .env file when one exists and then parses the environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.DB.Addr == "" {
		return nil, fmt.Errorf("DB_ADDR must not be empty")
	}
	if cfg.RateLimiter.RequestsPerTimeFrame <= 0 {
		return nil, fmt.Errorf("RATELIMITER_REQUESTS_COUNT must be positive, got %d", cfg.RateLimiter.RequestsPerTimeFrame)
	}
	if cfg.RateLimiter.TimeFrame <= 0 {
		return nil, fmt.Errorf("RATELIMITER_TIMEFRAME must be positive, got %s", cfg.RateLimiter.TimeFrame)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
