package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the entire application configuration
type Config struct {
	Cache    CacheConfig    `mapstructure:"cache"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Janitor  JanitorConfig  `mapstructure:"janitor"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
}

// CacheConfig contains cache settings
type CacheConfig struct {
	RootDir       string `mapstructure:"root_dir"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// HTTPConfig contains transfer client settings
type HTTPConfig struct {
	TransferTimeout string `mapstructure:"transfer_timeout"`
	ProbeTimeout    string `mapstructure:"probe_timeout"`
}

// JanitorConfig contains periodic sweep settings
type JanitorConfig struct {
	SweepInterval string `mapstructure:"sweep_interval"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// DatabaseConfig contains operation history database settings
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// Load loads configuration from the specified file path. A missing file is
// not an error; defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	v.SetDefault("cache.root_dir", filepath.Join(home, ".dataset-cache"))
	v.SetDefault("cache.retention_days", 30)
	v.SetDefault("http.transfer_timeout", "0s")
	v.SetDefault("http.probe_timeout", "10s")
	v.SetDefault("janitor.sweep_interval", "1h")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("database.path", "")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Cache.RootDir == "" {
		return fmt.Errorf("cache.root_dir is required")
	}
	if c.Cache.RetentionDays < 0 {
		return fmt.Errorf("cache.retention_days must not be negative")
	}

	if _, err := time.ParseDuration(c.HTTP.TransferTimeout); err != nil {
		return fmt.Errorf("invalid http.transfer_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.HTTP.ProbeTimeout); err != nil {
		return fmt.Errorf("invalid http.probe_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Janitor.SweepInterval); err != nil {
		return fmt.Errorf("invalid janitor.sweep_interval: %w", err)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

// DatabasePath returns the history database path, defaulting to a file under
// the cache root.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Cache.RootDir, "history.db")
}

// GetTransferTimeout returns the transfer timeout as time.Duration.
// Zero means no timeout; a stuck transfer blocks until cancelled.
func (c *HTTPConfig) GetTransferTimeout() time.Duration {
	d, _ := time.ParseDuration(c.TransferTimeout)
	return d
}

// GetProbeTimeout returns the metadata probe timeout as time.Duration
func (c *HTTPConfig) GetProbeTimeout() time.Duration {
	d, _ := time.ParseDuration(c.ProbeTimeout)
	if d == 0 {
		return 10 * time.Second
	}
	return d
}

// GetSweepInterval returns the janitor sweep interval as time.Duration
func (c *JanitorConfig) GetSweepInterval() time.Duration {
	d, _ := time.ParseDuration(c.SweepInterval)
	if d == 0 {
		return time.Hour
	}
	return d
}

// GetRetention returns the cache retention threshold as time.Duration
func (c *CacheConfig) GetRetention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}
