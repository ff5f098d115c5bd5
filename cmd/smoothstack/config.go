package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all CLI configuration, loaded from the config file and from
// SMOOTHSTACK_-prefixed environment variables; an environment variable
// overrides the file's value (viper's own override rules).
type Config struct {
	DataDir string       `mapstructure:"data_dir"`
	Docker  DockerConfig `mapstructure:"docker"`
	Log     LogConfig    `mapstructure:"log"`
}

// DockerConfig holds container-engine connection settings.
type DockerConfig struct {
	Host string `mapstructure:"host"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServiceGroupsDir is where ServiceGroup records are persisted.
func (c *Config) ServiceGroupsDir() string { return filepath.Join(c.DataDir, "service_groups") }

// TemplatesDir is where network and dev-environment templates are persisted.
func (c *Config) TemplatesDir() string { return filepath.Join(c.DataDir, "templates") }

// CommDir is where communication channel records are persisted.
func (c *Config) CommDir() string { return filepath.Join(c.DataDir, "comm") }

// SourcesDir is where dependency source records are persisted.
func (c *Config) SourcesDir() string { return filepath.Join(c.DataDir, "sources") }

// CacheDSN is the SQLite DSN for the artifact cache.
func (c *Config) CacheDSN() string { return filepath.Join(c.DataDir, "cache.db") }

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("data_dir", "./data")
	v.SetDefault("docker.host", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("SMOOTHSTACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// SetupLogger creates a logger with the configured level and format.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
