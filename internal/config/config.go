// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/overbar/internal/overlay"
)

// Default configuration values.
const (
	DefaultToolbarHeight = 1
	DefaultActivation    = "all"
	DefaultSkin          = "default"
	DefaultVolume        = 80
)

// Config represents the overbar configuration.
type Config struct {
	Toolbar       ToolbarConfig       `toml:"toolbar"`
	Rulesets      []RulesetConfig     `toml:"rulesets"`
	Notifications NotificationsConfig `toml:"notifications"`
	Audio         AudioConfig         `toml:"audio"`
}

// ToolbarConfig holds toolbar overlay settings.
type ToolbarConfig struct {
	Height      int    `toml:"height"`
	Activation  string `toml:"activation"` // all, user, disabled
	StartHidden bool   `toml:"start_hidden"`
	Skin        string `toml:"skin"`
}

// RulesetConfig describes one selectable ruleset. Order matters: the Nth
// entry is bound to the Nth number shortcut.
type RulesetConfig struct {
	ID        int    `toml:"id"`
	ShortName string `toml:"short_name"`
	Name      string `toml:"name"`
}

// NotificationsConfig controls what counts towards the unread badge.
type NotificationsConfig struct {
	MuteApps []string `toml:"mute_apps"` // glob patterns on app name
	DBus     bool     `toml:"dbus"`      // capture Notify calls from the session bus
}

// AudioConfig configures the new-notification chime.
type AudioConfig struct {
	Sound  string `toml:"sound"`  // empty disables the chime
	Volume int    `toml:"volume"` // 0-100
}

// DefaultRulesets returns the stock ruleset list.
func DefaultRulesets() []RulesetConfig {
	return []RulesetConfig{
		{ID: 0, ShortName: "osu", Name: "osu!"},
		{ID: 1, ShortName: "taiko", Name: "osu!taiko"},
		{ID: 2, ShortName: "fruits", Name: "osu!catch"},
		{ID: 3, ShortName: "mania", Name: "osu!mania"},
	}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Toolbar: ToolbarConfig{
			Height:     DefaultToolbarHeight,
			Activation: DefaultActivation,
			Skin:       DefaultSkin,
		},
		Rulesets: DefaultRulesets(),
		Audio: AudioConfig{
			Volume: DefaultVolume,
		},
	}
}

// ActivationMode parses the configured toolbar activation mode.
func (c *Config) ActivationMode() (overlay.ActivationMode, error) {
	return overlay.ParseActivationMode(c.Toolbar.Activation)
}

// Validate checks the configuration for values the toolbar cannot use.
func (c *Config) Validate() error {
	var errs []error

	if c.Toolbar.Height < 1 {
		errs = append(errs, fmt.Errorf("toolbar.height must be at least 1, got %d", c.Toolbar.Height))
	}
	if _, err := c.ActivationMode(); err != nil {
		errs = append(errs, fmt.Errorf("toolbar.activation: %w", err))
	}
	if len(c.Rulesets) == 0 {
		errs = append(errs, errors.New("at least one ruleset is required"))
	}
	for _, pattern := range c.Notifications.MuteApps {
		if _, err := glob.Compile(pattern); err != nil {
			errs = append(errs, fmt.Errorf("invalid mute_apps pattern '%s': %w", pattern, err))
		}
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		errs = append(errs, fmt.Errorf("audio.volume must be between 0 and 100, got %d", c.Audio.Volume))
	}

	return errors.Join(errs...)
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "overbar", "config.toml")
}

// SkinsDir returns the directory user skins are loaded from.
func SkinsDir() string {
	path := ConfigPath()
	if path == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(path), "skins")
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "overbar")
}

// HistoryPath returns the path to the notification history file.
func HistoryPath() string {
	return filepath.Join(DataPath(), "history.jsonl")
}

// LoadConfig loads configuration from path, or from ConfigPath when path is
// empty. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	path := DataPath()
	if path == "" {
		return errors.New("unable to determine data directory")
	}
	return os.MkdirAll(path, 0755)
}
