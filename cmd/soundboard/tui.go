package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kmnunley/Soundboard/internal/config"
	"github.com/kmnunley/Soundboard/internal/library"
	"github.com/kmnunley/Soundboard/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive soundboard",
	Long: `Launch the interactive terminal soundboard.

The TUI provides:
  - Scrollable list of clips grouped by subdirectory
  - Live search
  - Compressor panel for adjusting dynamics parameters
  - Overlap/interrupt playback modes
  - Automatic reload when the library changes on disk

Key bindings:
  j/k, ↑/↓    Navigate list
  enter/space Play selected clip
  S           Stop all playback
  m           Toggle overlap/interrupt mode
  u           Toggle smart unmute/remute
  c           Open compressor panel
  /           Search clips
  r           Reload sound library
  ?           Show help
  q           Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	debounce := time.Duration(cfg.Library.DebounceMs) * time.Millisecond
	if cfg.Library.DebounceMs <= 0 {
		debounce = config.DefaultDebounceMs * time.Millisecond
	}

	watcher, err := library.NewWatcher(lib, debounce, logger)
	if err != nil {
		logger.Warn("failed to create library watcher", "error", err)
		watcher = nil
	}

	return tui.Run(tui.RunOptions{
		Config:  cfg,
		Manager: manager,
		Library: lib,
		Watcher: watcher,
	})
}
