// Package main provides the CLI entrypoint for soundboard.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kmnunley/Soundboard/internal/audio"
	"github.com/kmnunley/Soundboard/internal/cache"
	"github.com/kmnunley/Soundboard/internal/config"
	"github.com/kmnunley/Soundboard/internal/history"
	"github.com/kmnunley/Soundboard/internal/library"
	"github.com/kmnunley/Soundboard/internal/mute"
	"github.com/kmnunley/Soundboard/internal/settings"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose      bool
		libraryDir   string
		configPath   string
		settingsPath string
	}
	logger *slog.Logger

	lib          *library.Library
	settingsFile *settings.File
	diskCache    *cache.Disk
	playLog      *history.Log
	muteCtrl     *mute.PulseController
	manager      *audio.Manager
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "soundboard",
	Short: "Terminal soundboard with per-clip compression",
	Long: `soundboard plays short audio clips from a sound library directory.

Clips are organized into groups by subdirectory. An optional dynamic
range compressor evens out loudness across clips, with processed audio
cached in memory and on disk. Smart unmute temporarily unmutes the
system output around playback and restores the mute afterwards.

Running soundboard without a subcommand launches the interactive TUI.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup logging
		setupLogger()

		// Load configuration
		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if globalOpts.libraryDir != "" {
			cfg.Library.Dir = globalOpts.libraryDir
		}

		if err := config.EnsureDataDir(); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		// Playback history (best effort)
		playLog, err = history.Open(config.HistoryPath())
		if err != nil {
			logger.Warn("failed to open playback history", "error", err)
			playLog = nil
		}

		// Runtime settings
		settingsPath := globalOpts.settingsPath
		if settingsPath == "" {
			settingsPath = config.SettingsPath()
		}
		settingsFile = settings.NewFile(settingsPath)
		current, err := settingsFile.Load()
		if err != nil {
			logger.Warn("failed to load settings, using defaults", "error", err)
		}

		// Sound library
		lib = library.New(cfg.Library.Dir, logger)
		if err := lib.Scan(); err != nil {
			if errors.Is(err, library.ErrNoLibraryDir) {
				logger.Warn("sound library directory not found", "dir", cfg.Library.Dir)
			} else {
				return fmt.Errorf("failed to scan sound library: %w", err)
			}
		}

		// Processed audio disk cache
		diskCache, err = cache.NewDisk(cfg.CacheDir(), logger)
		if err != nil {
			logger.Warn("failed to open disk cache, caching in memory only", "error", err)
			diskCache = nil
		}

		player := audio.NewPlayer(time.Duration(cfg.Audio.BufferMs)*time.Millisecond, logger)
		player.SetVolume(float64(cfg.Audio.Volume) / 100)

		// Smart mute needs a PulseAudio connection; without one the toggle
		// simply has no effect.
		var remuter *mute.Remuter
		muteCtrl, err = mute.NewPulseController()
		if err != nil {
			logger.Debug("pulseaudio not available, smart mute disabled", "error", err)
			muteCtrl = nil
		} else {
			remuter = mute.NewRemuter(muteCtrl, player.Busy, 0, logger)
		}

		manager = audio.NewManager(audio.ManagerOptions{
			Library:      lib,
			Player:       player,
			SettingsFile: settingsFile,
			DiskCache:    diskCache,
			History:      playLog,
			Remuter:      remuter,
			Logger:       logger,
		}, current)

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if manager != nil {
			manager.Close()
		}
		if muteCtrl != nil {
			_ = muteCtrl.Close()
		}
		if playLog != nil {
			return playLog.Close()
		}
		return nil
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.libraryDir, "library", "",
		"Path to the sound library directory (default: ./sounds)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/soundboard/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.settingsPath, "settings", "",
		"Path to runtime settings file (default: ~/.config/soundboard/settings.json)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}
