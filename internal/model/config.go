package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// APIConfig holds connection settings for the board service.
type APIConfig struct {
	// BaseURL is the root URL of the service; "/api" is appended by the client.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// SyncConfig controls the background refresh loop.
type SyncConfig struct {
	// PollIntervalMS is the period between full refreshes.
	PollIntervalMS int `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
}

// BreakerConfig tunes the circuit breaker wrapped around mutation calls.
type BreakerConfig struct {
	MaxFailures    int `mapstructure:"max_failures" yaml:"max_failures"`
	OpenTimeoutSec int `mapstructure:"open_timeout_sec" yaml:"open_timeout_sec"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
}

// DisplayConfig holds UI bounds. Widths are in terminal cells.
type DisplayConfig struct {
	SidebarMin int `mapstructure:"sidebar_min" yaml:"sidebar_min"`
	SidebarMax int `mapstructure:"sidebar_max" yaml:"sidebar_max"`
	ChatMin    int `mapstructure:"chat_min" yaml:"chat_min"`
	ChatMax    int `mapstructure:"chat_max" yaml:"chat_max"`
}

// DataConfig locates local state.
type DataConfig struct {
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Breaker BreakerConfig `mapstructure:"breaker" yaml:"breaker"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Data    DataConfig    `mapstructure:"data" yaml:"data"`
}

// PollInterval returns the refresh period as a duration.
func (c *AppConfig) PollInterval() time.Duration {
	return time.Duration(c.Sync.PollIntervalMS) * time.Millisecond
}

// RequestTimeout returns the per-request timeout as a duration.
func (c *AppConfig) RequestTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// BreakerTimeout returns how long the mutation breaker stays open.
func (c *AppConfig) BreakerTimeout() time.Duration {
	return time.Duration(c.Breaker.OpenTimeoutSec) * time.Second
}

// configDir returns ~/.config/boardsync, or "." when the home directory
// cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "boardsync")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/boardsync/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:8000",
			TimeoutSec: 30,
		},
		Sync: SyncConfig{PollIntervalMS: 4500},
		Breaker: BreakerConfig{
			MaxFailures:    5,
			OpenTimeoutSec: 10,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(configDir(), "boardsync.log"),
		},
		Display: DisplayConfig{
			SidebarMin: 22,
			SidebarMax: 40,
			ChatMin:    28,
			ChatMax:    50,
		},
		Data: DataConfig{DBPath: filepath.Join(configDir(), "prefs.db")},
	}
}

func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("sync.poll_interval_ms", d.Sync.PollIntervalMS)
	v.SetDefault("breaker.max_failures", d.Breaker.MaxFailures)
	v.SetDefault("breaker.open_timeout_sec", d.Breaker.OpenTimeoutSec)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("display.sidebar_min", d.Display.SidebarMin)
	v.SetDefault("display.sidebar_max", d.Display.SidebarMax)
	v.SetDefault("display.chat_min", d.Display.ChatMin)
	v.SetDefault("display.chat_max", d.Display.ChatMax)
	v.SetDefault("data.db_path", d.Data.DBPath)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with BOARDSYNC_ override file values
// (BOARDSYNC_API_BASE_URL for api.base_url). If the file does not exist,
// defaults plus environment overrides are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BOARDSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Sync.PollIntervalMS <= 0 {
		cfg.Sync.PollIntervalMS = 4500
	}
	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = 30
	}
	if cfg.Display.SidebarMin > cfg.Display.SidebarMax {
		return nil, fmt.Errorf("parsing config %s: display.sidebar_min %d exceeds sidebar_max %d",
			path, cfg.Display.SidebarMin, cfg.Display.SidebarMax)
	}
	if cfg.Display.ChatMin > cfg.Display.ChatMax {
		return nil, fmt.Errorf("parsing config %s: display.chat_min %d exceeds chat_max %d",
			path, cfg.Display.ChatMin, cfg.Display.ChatMax)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("sync", cfg.Sync)
	v.Set("breaker", cfg.Breaker)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)
	v.Set("data", cfg.Data)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
