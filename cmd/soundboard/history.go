package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var historyOpts struct {
	limit int
	clear bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent playback history",
	Long: `Show recently played clips, newest first.

Examples:
  # Show the most recent plays
  soundboard history

  # Show the last 50 plays
  soundboard history --limit 50

  # Wipe the history
  soundboard history --clear`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 0,
		"Maximum entries to show (0 = config default)")
	historyCmd.Flags().BoolVar(&historyOpts.clear, "clear", false,
		"Delete all playback history")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if playLog == nil {
		fmt.Println("Playback history unavailable")
		return nil
	}

	if historyOpts.clear {
		if err := playLog.Clear(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Println("History cleared.")
		return nil
	}

	limit := historyOpts.limit
	if limit <= 0 {
		limit = cfg.History.Limit
	}

	entries, err := playLog.Recent(limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No playback history.")
		return nil
	}

	for _, e := range entries {
		mode := e.Mode
		if e.Compressed {
			mode += ", compressed"
		}
		fmt.Printf("%-20s %-30s (%s)\n",
			humanize.Time(e.PlayedAtTime()), e.ClipKey, mode)
	}
	return nil
}
