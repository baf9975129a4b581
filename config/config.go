package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ResultLimit       int           `env:"RESULT_LIMIT" envDefault:"10"`
	SourceResultLimit int           `env:"SOURCE_RESULT_LIMIT" envDefault:"10"`
	LoadTimeout       time.Duration `env:"LOAD_TIMEOUT" envDefault:"30s"`
	SettleDelay       time.Duration `env:"SETTLE_DELAY" envDefault:"3s"`

	MaxConcurrency int `env:"MAX_CONCURRENCY" envDefault:"3"`
	RateLimitMs    int `env:"RATE_LIMIT_MS" envDefault:"1000"`

	// FixtureDir switches every marketplace to saved result pages.
	FixtureDir string `env:"FIXTURE_DIR"`
	ChromeBin  string `env:"CHROME_BIN"`

	CSVOutputPath string `env:"CSV_OUTPUT_PATH" envDefault:"./output/listings.csv"`
	DatabaseURL   string `env:"DATABASE_URL"`

	Watch Watch

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Watch holds the scheduled price observation settings.
type Watch struct {
	Schedule  string        `env:"WATCH_SCHEDULE" envDefault:"@every 6h"`
	IDs       []string      `env:"WATCH_IDS" envSeparator:"," envDefault:"42100,42115,42131,42145,42154"`
	Retention time.Duration `env:"TREND_RETENTION" envDefault:"720h"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load() (*Config, error) {
	// a missing .env is fine, the process environment still applies
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.ResultLimit < 0:
		return fmt.Errorf("config: RESULT_LIMIT must not be negative, got %d", c.ResultLimit)
	case c.SourceResultLimit <= 0:
		return fmt.Errorf("config: SOURCE_RESULT_LIMIT must be positive, got %d", c.SourceResultLimit)
	case c.LoadTimeout <= 0:
		return fmt.Errorf("config: LOAD_TIMEOUT must be positive, got %s", c.LoadTimeout)
	case c.MaxConcurrency <= 0:
		return fmt.Errorf("config: MAX_CONCURRENCY must be positive, got %d", c.MaxConcurrency)
	case c.RateLimitMs < 0:
		return fmt.Errorf("config: RATE_LIMIT_MS must not be negative, got %d", c.RateLimitMs)
	}
	return nil
}
