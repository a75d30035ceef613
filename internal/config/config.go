// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultLibraryDir   = "sounds"
	DefaultCacheDirName = ".processed_cache"
	DefaultVolume       = 100
	DefaultBufferMs     = 100
	DefaultHistoryLimit = 20
	DefaultDebounceMs   = 250
)

// Config represents the soundboard configuration.
type Config struct {
	Library LibraryConfig `toml:"library"`
	Audio   AudioConfig   `toml:"audio"`
	TUI     TUIConfig     `toml:"tui"`
	History HistoryConfig `toml:"history"`
}

// LibraryConfig holds sound library settings.
type LibraryConfig struct {
	Dir        string `toml:"dir"`         // Library root (default: ./sounds)
	CacheDir   string `toml:"cache_dir"`   // Processed audio cache (default: <dir>/.processed_cache)
	DebounceMs int    `toml:"debounce_ms"` // Rescan debounce after file changes
}

// AudioConfig holds playback settings.
type AudioConfig struct {
	Volume   int `toml:"volume"`    // Master volume 0-100
	BufferMs int `toml:"buffer_ms"` // Speaker buffer size in milliseconds
}

// TUIConfig holds TUI-specific settings.
type TUIConfig struct {
	ShowHelp bool `toml:"show_help"`
}

// HistoryConfig holds playback history settings.
type HistoryConfig struct {
	Limit int `toml:"limit"` // Default entries shown by the history command
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			Dir:        DefaultLibraryDir,
			CacheDir:   "",
			DebounceMs: DefaultDebounceMs,
		},
		Audio: AudioConfig{
			Volume:   DefaultVolume,
			BufferMs: DefaultBufferMs,
		},
		TUI: TUIConfig{
			ShowHelp: true,
		},
		History: HistoryConfig{
			Limit: DefaultHistoryLimit,
		},
	}
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
	return filepath.Join(configHome, "soundboard", "config.toml")
}

// SettingsPath returns the default path to the runtime settings file.
func SettingsPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "soundboard", "settings.json")
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
	return filepath.Join(dataHome, "soundboard")
}

// HistoryPath returns the path to the playback history JSONL file.
func HistoryPath() string {
	return filepath.Join(DataPath(), "history.jsonl")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// Start with defaults
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// No config file, use defaults
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// CacheDir resolves the processed audio cache directory: the configured
// path if set, otherwise a dot directory inside the library root.
func (c *Config) CacheDir() string {
	if c.Library.CacheDir != "" {
		return c.Library.CacheDir
	}
	return filepath.Join(c.Library.Dir, DefaultCacheDirName)
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	path := DataPath()
	if path == "" {
		return errors.New("unable to determine data directory")
	}
	return os.MkdirAll(path, 0755)
}
