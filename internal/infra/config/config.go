// Package config provides configuration loading from YAML files.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the daemon configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Bus      BusConfig      `yaml:"bus"`
	Release  ReleaseConfig  `yaml:"release"`
	Resolver ResolverConfig `yaml:"resolver"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Output string `yaml:"output" default:"stdout"`
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	File   string `yaml:"file"`
}

// BusConfig bounds the command and event channels.
type BusConfig struct {
	CommandCapacity int `yaml:"command_capacity" default:"32" validate:"gte=1,lte=4096"`
	EventCapacity   int `yaml:"event_capacity" default:"32" validate:"gte=1,lte=4096"`
}

// ReleaseConfig tunes the shutdown stop-retry loop.
type ReleaseConfig struct {
	Attempts   int `yaml:"attempts" default:"10" validate:"gte=1,lte=100"`
	IntervalMs int `yaml:"interval_ms" default:"100" validate:"gte=10,lte=5000"`
}

// ResolverConfig tunes media resolution.
type ResolverConfig struct {
	TimeoutMs int `yaml:"timeout_ms" default:"10000" validate:"gte=100,lte=120000"`
}

// Load loads configuration from a YAML file. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("PLAYBACKD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PLAYBACKD_LOG_FILE"); v != "" {
		c.Log.Output = v
		c.Log.File = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}
