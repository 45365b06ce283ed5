package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// HealthConfig holds the connection settings for the external health-data
// export service used to sync sleep and mindfulness records.
type HealthConfig struct {
	// Enabled controls whether health sync runs at all.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// BaseURL is the root URL of the health export API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// PollIntervalSec is how often (in seconds) to pull new samples.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// AudioConfig holds playback and caching settings.
type AudioConfig struct {
	// CacheDir is the directory holding downloaded audio files.
	// Empty means <data dir>/audio.
	CacheDir string `mapstructure:"cache_dir" yaml:"cache_dir"`

	// CatalogURL is an optional remote content catalog; when empty the
	// bundled catalog file is used.
	CatalogURL string `mapstructure:"catalog_url" yaml:"catalog_url"`

	// PlayerCommand is the external player binary driven over IPC.
	PlayerCommand string `mapstructure:"player_command" yaml:"player_command"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Health  HealthConfig  `mapstructure:"health" yaml:"health"`
	Audio   AudioConfig   `mapstructure:"audio" yaml:"audio"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/lull/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "lull", "config.yaml")
}

// DefaultDataDir returns the directory holding the database, preferences,
// and audio cache, located at ~/.local/share/lull.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "lull")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Health: HealthConfig{
			Enabled:         false,
			PollIntervalSec: 900,
		},
		Audio: AudioConfig{
			PlayerCommand: "mpv",
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("health.enabled", false)
	v.SetDefault("health.poll_interval_sec", 900)
	v.SetDefault("audio.player_command", "mpv")
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Health.PollIntervalSec <= 0 {
		cfg.Health.PollIntervalSec = 900
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

	v.Set("health", cfg.Health)
	v.Set("audio", cfg.Audio)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
