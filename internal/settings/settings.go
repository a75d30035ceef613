// Package settings persists runtime user settings (playback mode, smart
// mute, compressor parameters) as a flat JSON document.
package settings

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/kmnunley/Soundboard/internal/model"
)

// Settings holds the user-adjustable runtime state of the board.
type Settings struct {
	// Overlap selects the playback mode: true lets clips play over each
	// other, false stops everything before each new clip.
	Overlap bool

	// SmartMute temporarily unmutes the system output around playback.
	SmartMute bool

	Compressor model.CompressorSettings
}

// Defaults returns the settings used when no file exists.
func Defaults() Settings {
	return Settings{
		Overlap:    true,
		SmartMute:  false,
		Compressor: model.DefaultCompressorSettings(),
	}
}

// File loads and saves settings at a fixed path.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a settings file handle. The file is not created until the
// first Save.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Load reads settings from disk. A missing file yields defaults; malformed
// or mistyped fields fall back to their default values individually.
func (f *File) Load() (Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Defaults()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return s, err
	}

	return fromMap(raw), nil
}

// Save writes settings to disk, creating parent directories if needed.
func (f *File) Save(s Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(toMap(s), "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(f.path, data, 0644)
}

// fromMap builds Settings from a decoded JSON object, tolerating missing or
// mistyped fields. Unknown fields (e.g. window geometry from older versions)
// are ignored.
func fromMap(raw map[string]any) Settings {
	s := Defaults()

	s.Overlap = boolOr(raw, "overlap_audio", s.Overlap)
	s.SmartMute = boolOr(raw, "smart_unmute_remute", s.SmartMute)

	c := &s.Compressor
	c.Enabled = boolOr(raw, "compressor_enabled", c.Enabled)
	c.InputGainDB = numOr(raw, "compressor_input_gain_db", c.InputGainDB)
	c.ThresholdDB = numOr(raw, "compressor_threshold_db", c.ThresholdDB)
	c.Ratio = numOr(raw, "compressor_ratio", c.Ratio)
	c.AttackMs = numOr(raw, "compressor_attack_ms", c.AttackMs)
	c.ReleaseMs = numOr(raw, "compressor_release_ms", c.ReleaseMs)
	c.MakeupGainDB = numOr(raw, "compressor_makeup_gain_db", c.MakeupGainDB)
	c.OutputCeilingDB = numOr(raw, "compressor_output_ceiling_db", c.OutputCeilingDB)
	c.CacheMaxItems = int(numOr(raw, "compressor_cache_max_items", float64(c.CacheMaxItems)))
	c.Revision = int(numOr(raw, "compressor_revision", float64(c.Revision)))
	c.Clamp()

	return s
}

// toMap flattens Settings into the JSON document schema.
func toMap(s Settings) map[string]any {
	return map[string]any{
		"overlap_audio":                s.Overlap,
		"smart_unmute_remute":          s.SmartMute,
		"compressor_enabled":           s.Compressor.Enabled,
		"compressor_input_gain_db":     s.Compressor.InputGainDB,
		"compressor_threshold_db":      s.Compressor.ThresholdDB,
		"compressor_ratio":             s.Compressor.Ratio,
		"compressor_attack_ms":         s.Compressor.AttackMs,
		"compressor_release_ms":        s.Compressor.ReleaseMs,
		"compressor_makeup_gain_db":    s.Compressor.MakeupGainDB,
		"compressor_output_ceiling_db": s.Compressor.OutputCeilingDB,
		"compressor_cache_max_items":   s.Compressor.CacheMaxItems,
		"compressor_revision":          s.Compressor.Revision,
	}
}

func boolOr(raw map[string]any, key string, fallback bool) bool {
	if v, ok := raw[key].(bool); ok {
		return v
	}
	return fallback
}

func numOr(raw map[string]any, key string, fallback float64) float64 {
	if v, ok := raw[key].(float64); ok {
		return v
	}
	return fallback
}
