// Package config loads goowl's runtime settings.
//
// Settings come from, in increasing priority: defaults, an optional
// .goowl.yaml in the working directory, and GOOWL_* environment variables.
// Command-line arguments belong to the host and are not read here.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mpyw/goowl/internal/emit"
	"github.com/mpyw/goowl/internal/sched"
	"github.com/mpyw/goowl/internal/source"
)

// Config holds the runtime settings.
type Config struct {
	Workers         int           `mapstructure:"workers"`           // analysis worker pool size
	Grace           time.Duration `mapstructure:"grace"`             // drain owner grace period
	Format          string        `mapstructure:"format"`            // "json" or "msgpack"
	LogLevel        string        `mapstructure:"log_level"`         // "quiet", "info" or "debug"
	StackMax        int           `mapstructure:"stack_max"`         // goroutine stack ceiling in bytes
	SourceCacheSize int           `mapstructure:"source_cache_size"` // source files kept in memory
}

// Default returns the default settings.
func Default() *Config {
	return &Config{
		Workers:         sched.DefaultWorkers,
		Grace:           sched.DefaultGrace,
		Format:          string(emit.JSON),
		LogLevel:        "quiet",
		StackMax:        sched.DefaultStackMax,
		SourceCacheSize: source.DefaultCapacity,
	}
}

// Load reads the settings for a run started in dir.
func Load(dir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName(".goowl")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("GOOWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("workers", def.Workers)
	v.SetDefault("grace", def.Grace)
	v.SetDefault("format", def.Format)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("stack_max", def.StackMax)
	v.SetDefault("source_cache_size", def.SourceCacheSize)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	var errs []error

	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.Grace < 0 {
		errs = append(errs, fmt.Errorf("grace must not be negative, got %s", c.Grace))
	}
	if _, err := emit.ParseEncoding(c.Format); err != nil {
		errs = append(errs, err)
	}
	switch c.LogLevel {
	case "quiet", "info", "debug":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if c.StackMax < 0 {
		errs = append(errs, fmt.Errorf("stack_max must not be negative, got %d", c.StackMax))
	}
	if c.SourceCacheSize < 1 {
		errs = append(errs, fmt.Errorf("source_cache_size must be at least 1, got %d", c.SourceCacheSize))
	}

	return errors.Join(errs...)
}
