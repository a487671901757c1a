// Package config loads jsonio CLI settings from defaults, an optional
// config file and JSONIO_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the jsonio CLI.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Query   QueryConfig   `mapstructure:"query"`
	Output  OutputConfig  `mapstructure:"output"`
	Store   StoreConfig   `mapstructure:"store"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// QueryConfig selects the expression engine used by query.
type QueryConfig struct {
	Engine string `mapstructure:"engine"`
}

// OutputConfig controls how sections are printed.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// StoreConfig holds document store settings.
type StoreConfig struct {
	Indent         int  `mapstructure:"indent"`
	StrictBooleans bool `mapstructure:"strict_booleans"`
}

// Load reads configuration. An explicit configFile must exist; otherwise
// config.yaml is looked up in ~/.jsonio and the working directory and is
// optional.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("query.engine", "expr")
	v.SetDefault("output.format", "json")
	v.SetDefault("store.indent", 4)
	v.SetDefault("store.strict_booleans", false)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(homeDir(), ".jsonio"))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("JSONIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Query.Engine = strings.ToLower(strings.TrimSpace(c.Query.Engine))
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
}

// Validate checks that enumerated settings hold known values.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json; got %q", c.Logging.Format)
	}
	switch c.Query.Engine {
	case "expr", "cel", "js":
	default:
		return fmt.Errorf("query.engine must be one of expr, cel, js; got %q", c.Query.Engine)
	}
	switch c.Output.Format {
	case "json", "toml":
	default:
		return fmt.Errorf("output.format must be json or toml; got %q", c.Output.Format)
	}
	if c.Store.Indent < 0 || c.Store.Indent > 8 {
		return fmt.Errorf("store.indent must be between 0 and 8; got %d", c.Store.Indent)
	}
	return nil
}

// IndentString returns the indentation written to documents.
func (c *Config) IndentString() string {
	return strings.Repeat(" ", c.Store.Indent)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
