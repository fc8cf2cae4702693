// Package config provides configuration management for the disclosure bot.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Poll     PollConfig     `mapstructure:"poll"`
	Database DatabaseConfig `mapstructure:"database"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// TelegramConfig holds the Bot API credentials.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
}

// PollConfig controls the poll scheduler.
type PollConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	FirstDelay time.Duration `mapstructure:"first_delay"`
}

// DatabaseConfig holds the SQLite location.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// NotifyConfig controls the fanout.
type NotifyConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// MetricsConfig controls the optional Prometheus listener.
type MetricsConfig struct {
	Listen string `mapstructure:"listen"` // empty disables the listener
}

// LoggingConfig mirrors the logging package configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/idx-disclosure-bot"
	}
	return filepath.Join(home, ".config", "idx-disclosure-bot")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("poll.interval", 10*time.Minute)
	v.SetDefault("poll.first_delay", 10*time.Second)
	v.SetDefault("database.path", filepath.Join(configDir, "idx_disclosures.db"))
	v.SetDefault("notify.concurrency", 8)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "idxbot.log"))
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age", 30)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("creating config template: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("IDX_BOT_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("IDX_BOT_METRICS_LISTEN"); v != "" {
		cfg.Metrics.Listen = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Poll.Interval < time.Minute {
		return fmt.Errorf("poll interval must be at least 1 minute, got %s", c.Poll.Interval)
	}
	if c.Notify.Concurrency < 1 {
		return fmt.Errorf("notify concurrency must be at least 1, got %d", c.Notify.Concurrency)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}
	return nil
}
