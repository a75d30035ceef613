package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kmnunley/Soundboard/internal/audio"
	"github.com/kmnunley/Soundboard/internal/model"
)

var listOpts struct {
	format    string
	durations bool
}

// listedClip is the machine-readable listing entry.
type listedClip struct {
	Key      string  `json:"key" yaml:"key"`
	Label    string  `json:"label" yaml:"label"`
	Group    string  `json:"group,omitempty" yaml:"group,omitempty"`
	Path     string  `json:"path" yaml:"path"`
	Size     int64   `json:"size" yaml:"size"`
	Duration float64 `json:"duration_seconds,omitempty" yaml:"duration_seconds,omitempty"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the clips in the sound library",
	Long: `List every clip in the sound library, grouped clips first.

Examples:
  # Human-readable listing
  soundboard list

  # Include clip durations (decodes each file)
  soundboard list --durations

  # Machine-readable output
  soundboard list --format json
  soundboard list --format yaml`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listOpts.format, "format", "f", "plain",
		"Output format (plain, json, yaml)")
	listCmd.Flags().BoolVar(&listOpts.durations, "durations", false,
		"Decode each clip to report its duration")
}

func runList(cmd *cobra.Command, args []string) error {
	switch strings.ToLower(listOpts.format) {
	case "plain":
		return listPlain()
	case "json", "yaml":
		return listStructured(strings.ToLower(listOpts.format))
	default:
		return fmt.Errorf("unknown format: %s", listOpts.format)
	}
}

func listPlain() error {
	if lib.Count() == 0 {
		fmt.Println("No clips found in", lib.Dir())
		return nil
	}

	for _, group := range lib.Groups() {
		fmt.Printf("%s/\n", group.Name)
		for _, clip := range group.Clips {
			printClipLine("  ", clip)
		}
	}

	ungrouped := lib.Ungrouped()
	if len(ungrouped) > 0 {
		if len(lib.Groups()) > 0 {
			fmt.Println("ungrouped:")
		}
		for _, clip := range ungrouped {
			printClipLine("  ", clip)
		}
	}

	fmt.Printf("\n%d clips\n", lib.Count())
	return nil
}

func printClipLine(indent string, clip model.SoundClip) {
	line := fmt.Sprintf("%s%-30s %8s", indent, clip.Label, humanize.Bytes(uint64(clip.Size)))
	if listOpts.durations {
		if d, err := audio.Duration(clip.Path); err == nil {
			line += fmt.Sprintf("  %6.1fs", d.Seconds())
		}
	}
	fmt.Println(line)
}

func listStructured(format string) error {
	clips := lib.All()
	listed := make([]listedClip, 0, len(clips))

	for _, clip := range clips {
		entry := listedClip{
			Key:   clip.Key,
			Label: clip.Label,
			Group: clip.Group,
			Path:  clip.Path,
			Size:  clip.Size,
		}
		if listOpts.durations {
			if d, err := audio.Duration(clip.Path); err == nil {
				entry.Duration = d.Seconds()
			}
		}
		listed = append(listed, entry)
	}

	if format == "yaml" {
		data, err := yaml.Marshal(listed)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(listed)
}
