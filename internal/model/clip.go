// Package model defines the core data structures for the soundboard.
package model

import (
	"path/filepath"
	"strings"
)

// Audio file extensions the library recognizes.
var ValidExtensions = []string{".wav", ".ogg", ".mp3"}

// SoundClip represents a single playable audio file in the library.
type SoundClip struct {
	// Key uniquely identifies the clip within the library.
	// Root-level clips use the file name, grouped clips use "group/file".
	Key string `json:"key"`

	// Label is the display name shown on the board button.
	Label string `json:"label"`

	// Group is the name of the containing subdirectory, empty for
	// clips placed directly under the library root.
	Group string `json:"group,omitempty"`

	// Path is the absolute path to the audio file.
	Path string `json:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`
}

// IsGrouped returns true if the clip belongs to a group.
func (c *SoundClip) IsGrouped() bool {
	return c.Group != ""
}

// IsAudioFile reports whether name has a recognized audio extension.
func IsAudioFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, valid := range ValidExtensions {
		if ext == valid {
			return true
		}
	}
	return false
}

// ClipLabel derives the button label from a file name: the extension is
// stripped and underscores become spaces.
func ClipLabel(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	return strings.ReplaceAll(stem, "_", " ")
}

// ClipKey builds the library key for a file, qualified by group when set.
func ClipKey(group, filename string) string {
	if group == "" {
		return filename
	}
	return group + "/" + filename
}
