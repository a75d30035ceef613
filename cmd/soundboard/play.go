package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var playOpts struct {
	raw bool
}

var playCmd = &cobra.Command{
	Use:   "play <clip>",
	Short: "Play a single clip and exit",
	Long: `Play one clip from the sound library and exit when it finishes.

The clip is addressed by its key: the filename for clips in the library
root, or group/filename for clips inside a group directory.

Examples:
  # Play an ungrouped clip
  soundboard play air_horn.wav

  # Play a clip from the memes group
  soundboard play memes/bruh.mp3

  # Bypass the compressor
  soundboard play memes/bruh.mp3 --raw`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().BoolVar(&playOpts.raw, "raw", false,
		"Bypass the compressor and play the original audio")
}

func runPlay(cmd *cobra.Command, args []string) error {
	key := args[0]

	done, err := manager.Play(key, playOpts.raw)
	if err != nil {
		return fmt.Errorf("failed to play %s: %w", key, err)
	}

	<-done
	return nil
}
