// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type Config struct {
	DBPath     string `env:"LIFEMAXXING_DB_PATH"`
	Store      string `env:"LIFEMAXXING_STORE" envDefault:"sqlite"`
	LogLevel   string `env:"LIFEMAXXING_LOG_LEVEL" envDefault:"warn"`
	LogFormat  string `env:"LIFEMAXXING_LOG_FORMAT" envDefault:"text"`
	DeviceID   string `env:"LIFEMAXXING_DEVICE_ID"`
	AppVersion string `env:"LIFEMAXXING_APP_VERSION" envDefault:"0.1.0"`
	Seed       uint64 `env:"LIFEMAXXING_SEED"`
	Timezone   string `env:"LIFEMAXXING_TIMEZONE"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("invalid store %q (want sqlite|memory)", c.Store)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the device-local timezone used for calendar-day arithmetic.
func (c Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
