package audio

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmnunley/Soundboard/internal/cache"
	"github.com/kmnunley/Soundboard/internal/library"
	"github.com/kmnunley/Soundboard/internal/model"
	"github.com/kmnunley/Soundboard/internal/settings"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// newTestManager builds a manager backed by temp dirs. The speaker is never
// initialized because nothing is played.
func newTestManager(t *testing.T) (*Manager, *settings.File, *cache.Disk) {
	t.Helper()

	dir := t.TempDir()
	lib := library.New(filepath.Join(dir, "sounds"), testLogger)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sounds"), 0755))
	require.NoError(t, lib.Scan())

	disk, err := cache.NewDisk(filepath.Join(dir, "cache"), testLogger)
	require.NoError(t, err)

	file := settings.NewFile(filepath.Join(dir, "settings.json"))
	current, err := file.Load()
	require.NoError(t, err)

	m := NewManager(ManagerOptions{
		Library:      lib,
		Player:       NewPlayer(100*time.Millisecond, testLogger),
		SettingsFile: file,
		DiskCache:    disk,
		Logger:       testLogger,
	}, current)
	return m, file, disk
}

// seedDiskCache drops a fake processed WAV into the disk cache directory.
func seedDiskCache(t *testing.T, disk *cache.Disk) string {
	t.Helper()
	path := filepath.Join(disk.Dir(), "deadbeef.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0644))
	return path
}

func TestManager_PlayUnknownClip(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.Play("nope.wav", false)
	assert.ErrorContains(t, err, "unknown clip")
}

func TestManager_PlayFromWarmDiskCacheCompletes(t *testing.T) {
	m, _, disk := newTestManager(t)

	// The source file is never decoded on a disk-cache hit, so junk
	// content is fine; only its extension and stat matter.
	clipPath := filepath.Join(m.library.Dir(), "beep.wav")
	require.NoError(t, os.WriteFile(clipPath, []byte("not a real wav"), 0644))
	require.NoError(t, m.library.Scan())

	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	processed := bufferFromSamples(make([][2]float64, 441), format)
	signature := m.Settings().Compressor.Signature()
	require.NoError(t, disk.Save(clipPath, signature, processed))

	done, err := m.Play("beep.wav", false)
	if err != nil {
		// No audio output device in this environment. The cached buffer
		// must still have been found: a decode error here would mean the
		// cache was bypassed.
		assert.NotContains(t, err.Error(), "decode")
		return
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("playback from the disk cache never completed")
	}
}

func TestManager_SetOverlapPersists(t *testing.T) {
	m, file, _ := newTestManager(t)

	require.NoError(t, m.SetOverlap(false))
	assert.False(t, m.Settings().Overlap)

	saved, err := file.Load()
	require.NoError(t, err)
	assert.False(t, saved.Overlap)
}

func TestManager_SetSmartMutePersists(t *testing.T) {
	m, file, _ := newTestManager(t)

	require.NoError(t, m.SetSmartMute(true))
	assert.True(t, m.Settings().SmartMute)

	saved, err := file.Load()
	require.NoError(t, err)
	assert.True(t, saved.SmartMute)
}

func TestManager_SetCompressorEnabledKeepsCaches(t *testing.T) {
	m, _, disk := newTestManager(t)
	cached := seedDiskCache(t, disk)

	require.NoError(t, m.SetCompressorEnabled(false))

	assert.False(t, m.Settings().Compressor.Enabled)
	assert.Equal(t, 0, m.Settings().Compressor.Revision, "toggling must not bump the revision")
	assert.FileExists(t, cached, "toggling must not clear the disk cache")
}

func TestManager_UpdateCompressorBumpsRevisionAndClearsCaches(t *testing.T) {
	m, file, disk := newTestManager(t)
	cached := seedDiskCache(t, disk)

	require.NoError(t, m.UpdateCompressor(func(c *model.CompressorSettings) {
		c.ThresholdDB = -24
		c.Ratio = 0.5 // clamped up to 1
	}))

	s := m.Settings()
	assert.Equal(t, 1, s.Compressor.Revision)
	assert.InDelta(t, -24.0, s.Compressor.ThresholdDB, 1e-9)
	assert.InDelta(t, 1.0, s.Compressor.Ratio, 1e-9)
	assert.NoFileExists(t, cached)

	saved, err := file.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Compressor.Revision)
}

func TestManager_ResetCompressor(t *testing.T) {
	m, _, _ := newTestManager(t)

	require.NoError(t, m.UpdateCompressor(func(c *model.CompressorSettings) {
		c.Ratio = 8
	}))
	require.NoError(t, m.ResetCompressor())

	s := m.Settings().Compressor
	defaults := model.DefaultCompressorSettings()
	assert.InDelta(t, defaults.Ratio, s.Ratio, 1e-9)
	assert.Equal(t, 2, s.Revision, "reset keeps the revision moving forward")
}

func TestManager_ReloadPreservesDiskCache(t *testing.T) {
	m, _, disk := newTestManager(t)
	cached := seedDiskCache(t, disk)

	before := m.Settings().Compressor.Revision
	require.NoError(t, m.Reload())

	assert.Equal(t, before, m.Settings().Compressor.Revision)
	assert.FileExists(t, cached, "reload must not clear the disk cache")
}

func TestCollectAndRebuildSamples(t *testing.T) {
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	samples := [][2]float64{{0.1, -0.1}, {0.5, 0.5}, {-0.25, 0.75}}

	buffer := bufferFromSamples(samples, format)
	require.Equal(t, len(samples), buffer.Len())

	got := collectSamples(buffer)
	require.Len(t, got, len(samples))
	for i := range samples {
		assert.InDelta(t, samples[i][0], got[i][0], 0.01)
		assert.InDelta(t, samples[i][1], got[i][1], 0.01)
	}
}
