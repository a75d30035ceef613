package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the processed audio cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show disk cache usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		if diskCache == nil {
			fmt.Println("Disk cache unavailable")
			return nil
		}

		count, size, err := diskCache.Status()
		if err != nil {
			return fmt.Errorf("failed to read cache directory: %w", err)
		}

		fmt.Printf("Cache directory: %s\n", diskCache.Dir())
		fmt.Printf("Processed clips: %d (%s)\n", count, humanize.Bytes(uint64(size)))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all processed audio from the disk cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		if diskCache == nil {
			fmt.Println("Disk cache unavailable")
			return nil
		}

		if err := diskCache.Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}

		fmt.Println("Cache cleared. Clips will be reprocessed on next play.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
