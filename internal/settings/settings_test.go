package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s := Defaults()
	assert.True(t, s.Overlap)
	assert.False(t, s.SmartMute)
	assert.True(t, s.Compressor.Enabled)
	assert.Equal(t, -18.0, s.Compressor.ThresholdDB)
}

func TestFile_LoadMissing(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "settings.json"))

	s, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestFile_SaveAndLoad(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "nested", "settings.json"))

	s := Defaults()
	s.Overlap = false
	s.SmartMute = true
	s.Compressor.ThresholdDB = -24.0
	s.Compressor.Revision = 3
	require.NoError(t, f.Save(s))

	loaded, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestFile_LoadTolerantOfMistypedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	content := `{
		"overlap_audio": "yes",
		"smart_unmute_remute": true,
		"compressor_ratio": "strong",
		"compressor_threshold_db": -30,
		"compressor_cache_max_items": 0,
		"window_geometry_b64": "AdnQywAD"
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := NewFile(path).Load()
	require.NoError(t, err)

	// Mistyped fields fall back to defaults.
	assert.True(t, s.Overlap)
	assert.Equal(t, 4.0, s.Compressor.Ratio)

	// Valid fields are applied, with clamping.
	assert.True(t, s.SmartMute)
	assert.Equal(t, -30.0, s.Compressor.ThresholdDB)
	assert.Equal(t, 1, s.Compressor.CacheMaxItems)
}

func TestFile_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	_, err := NewFile(path).Load()
	assert.Error(t, err)
}
