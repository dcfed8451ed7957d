// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/trip-board/backend/internal/remote"
)

// Config holds every setting of the tripboard binary.
type Config struct {
	// Trip API client
	TripAPIURL     string        `env:"TRIP_API_URL" envDefault:"http://localhost:8098/api"`
	TripAPIToken   string        `env:"TRIP_API_TOKEN"`
	TripAPISecret  string        `env:"TRIP_API_SECRET"`
	TripAPITimeout time.Duration `env:"TRIP_API_TIMEOUT" envDefault:"30s"`

	// Servers
	BoardAddr   string   `env:"BOARD_ADDR" envDefault:":8099"`
	APIAddr     string   `env:"API_ADDR" envDefault:":8098"`
	DataDir     string   `env:"DATA_DIR" envDefault:"/data"`
	StaticDir   string   `env:"STATIC_DIR" envDefault:"./static"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Logging
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// Websocket command throttling
	WSCommandsPerSecond float64 `env:"WS_COMMANDS_PER_SECOND" envDefault:"20"`
	WSCommandBurst      int     `env:"WS_COMMAND_BURST" envDefault:"40"`

	// Periodic re-evaluation of the future filter
	FutureRefreshSpec string `env:"FUTURE_REFRESH_SPEC" envDefault:"@every 1m"`
}

// Load reads an optional .env file and parses the environment. A missing
// .env is not an error.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings that cannot work.
func (c *Config) Validate() error {
	var problems []string

	if c.TripAPIURL == "" {
		problems = append(problems, "TRIP_API_URL is required")
	}
	if c.TripAPITimeout <= 0 {
		problems = append(problems, "TRIP_API_TIMEOUT must be positive")
	}
	if c.WSCommandsPerSecond <= 0 {
		problems = append(problems, "WS_COMMANDS_PER_SECOND must be positive")
	}
	if c.WSCommandBurst < 1 {
		problems = append(problems, "WS_COMMAND_BURST must be at least 1")
	}
	switch strings.ToLower(c.LoggerFormat) {
	case "text", "json":
	default:
		problems = append(problems, "LOGGER_FORMAT must be text or json")
	}
	if c.FutureRefreshSpec != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.FutureRefreshSpec); err != nil {
			problems = append(problems, fmt.Sprintf("FUTURE_REFRESH_SPEC: %v", err))
		}
	}
	if len(c.CORSOrigins) == 0 {
		problems = append(problems, "CORS_ALLOWED_ORIGINS must list at least one origin")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// Remote returns the trip API client settings.
func (c *Config) Remote() remote.Config {
	return remote.Config{
		BaseURL: strings.TrimRight(c.TripAPIURL, "/"),
		Token:   c.TripAPIToken,
		Secret:  c.TripAPISecret,
		Timeout: c.TripAPITimeout,
	}
}

// CommandRate returns the per-client websocket command rate.
func (c *Config) CommandRate() rate.Limit {
	return rate.Limit(c.WSCommandsPerSecond)
}
