// Package config loads guard defaults for the boundre command.
package config

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"boundre"
)

// Config holds all boundre configuration.
type Config struct {
	Guard   GuardConfig   `yaml:"guard"`
	Logging LoggingConfig `yaml:"logging"`
}

// GuardConfig configures every Pattern the command builds.
type GuardConfig struct {
	Ratio     int `yaml:"ratio"`      // reads allowed per input byte on metered calls
	MaxErrors int `yaml:"max_errors"` // reported budget failures before the circuit opens
	MaxDepth  int `yaml:"max_depth"`  // backtracking depth limit
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Guard: GuardConfig{
			Ratio:     boundre.DefaultRatio,
			MaxErrors: boundre.DefaultMaxErrors,
			MaxDepth:  boundre.DefaultMaxDepth,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Load reads configuration from a YAML file. An empty path or a missing file
// yields the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies BOUNDRE_* environment variables.
func (c *Config) applyEnvOverrides() error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"BOUNDRE_RATIO", &c.Guard.Ratio},
		{"BOUNDRE_MAX_ERRORS", &c.Guard.MaxErrors},
		{"BOUNDRE_MAX_DEPTH", &c.Guard.MaxDepth},
	}
	for _, v := range ints {
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", v.name, err)
		}
		*v.dst = n
	}
	if level := os.Getenv("BOUNDRE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	return nil
}

// Validate checks that the values can build a Pattern.
func (c *Config) Validate() error {
	if c.Guard.Ratio <= 0 {
		return fmt.Errorf("guard.ratio must be positive, got %d", c.Guard.Ratio)
	}
	if c.Guard.MaxErrors < 0 {
		return fmt.Errorf("guard.max_errors must not be negative, got %d", c.Guard.MaxErrors)
	}
	if c.Guard.MaxDepth <= 0 {
		return fmt.Errorf("guard.max_depth must be positive, got %d", c.Guard.MaxDepth)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// GuardOptions converts the guard section into Pattern options.
func (c *Config) GuardOptions(logger *zap.Logger) []boundre.Option {
	return []boundre.Option{
		boundre.WithRatio(c.Guard.Ratio),
		boundre.WithMaxErrors(c.Guard.MaxErrors),
		boundre.WithMaxDepth(c.Guard.MaxDepth),
		boundre.WithLogger(logger),
	}
}

// NewLogger builds a production zap logger at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
