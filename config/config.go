// ABOUTME: Application configuration loaded from the environment and an optional .env file
// ABOUTME: Defaults place the sqlite database under the XDG data directory
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the runtime configuration shared by every command.
type Config struct {
	// Database
	DBDriver    string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBPath      string `env:"DB_PATH"`
	DatabaseURL string `env:"DATABASE_URL"`

	// HTTP
	HTTPAddr    string   `env:"HTTP_ADDR" envDefault:":8080"`
	AuthSecret  string   `env:"AUTH_SECRET"`
	CronSecret  string   `env:"CRON_SECRET"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	// Generation
	OpenAIAPIKey          string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL         string        `env:"OPENAI_BASE_URL"`
	GenerationModel       string        `env:"GENERATION_MODEL" envDefault:"gpt-4o-mini"`
	GenerationTemperature float64       `env:"GENERATION_TEMPERATURE" envDefault:"0.7"`
	GenerationMaxTokens   int64         `env:"GENERATION_MAX_TOKENS" envDefault:"1024"`
	GenerationTimeout     time.Duration `env:"GENERATION_TIMEOUT" envDefault:"60s"`

	// Coordination and limits
	RedisURL         string        `env:"REDIS_URL"`
	AIRateLimit      string        `env:"AI_RATE_LIMIT" envDefault:"20-M"`
	ReminderInterval time.Duration `env:"REMINDER_INTERVAL" envDefault:"0s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.GenerationTemperature < 0 || c.GenerationTemperature > 2 {
		return fmt.Errorf("GENERATION_TEMPERATURE must be between 0 and 2, got %v", c.GenerationTemperature)
	}
	return nil
}

// GenerationEnabled reports whether a generation backend is configured.
func (c *Config) GenerationEnabled() bool {
	return strings.TrimSpace(c.OpenAIAPIKey) != ""
}

// DefaultDBPath returns the XDG data location for the sqlite database.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "outreach", "outreach.db")
}
