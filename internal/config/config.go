package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application. Values come from the
// environment, optionally seeded from a .env file in the working directory.
//
// MessageTTL is the only knob the chat core consumes; the eviction cycle
// interval is a fixed constant, not configuration.
type Config struct {
	AppName    string `envconfig:"APP_NAME" default:"topichat"`
	Addr       string `envconfig:"ADDR" default:":8000"`
	MessageTTL int    `envconfig:"MESSAGE_TTL" default:"30"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
}

// New loads configuration from the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// We may not have slog configured yet, so the standard logger is
		// acceptable for this one startup message.
		log.Println("No .env file found, relying on environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if cfg.MessageTTL <= 0 {
		return nil, fmt.Errorf("MESSAGE_TTL must be positive, got %d", cfg.MessageTTL)
	}
	return &cfg, nil
}

// TTL returns the message time-to-live as a duration.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.MessageTTL) * time.Second
}
