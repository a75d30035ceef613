package audio

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gopxl/beep/v2"

	"github.com/kmnunley/Soundboard/internal/cache"
	"github.com/kmnunley/Soundboard/internal/dsp"
	"github.com/kmnunley/Soundboard/internal/history"
	"github.com/kmnunley/Soundboard/internal/library"
	"github.com/kmnunley/Soundboard/internal/model"
	"github.com/kmnunley/Soundboard/internal/mute"
	"github.com/kmnunley/Soundboard/internal/settings"
)

// PlaybackMode names for history records.
const (
	ModeOverlap   = "overlap"
	ModeInterrupt = "interrupt"
)

// ManagerOptions configures a Manager. Library, Player and SettingsFile are
// required; the rest are optional features.
type ManagerOptions struct {
	Library      *library.Library
	Player       *Player
	SettingsFile *settings.File
	DiskCache    *cache.Disk
	History      *history.Log
	Remuter      *mute.Remuter
	Logger       *slog.Logger
}

// Manager drives the play pipeline: clip lookup, playback mode, smart
// mute, compression with caching, and history recording.
type Manager struct {
	mu     sync.Mutex
	logger *slog.Logger

	library      *library.Library
	player       *Player
	settingsFile *settings.File
	disk         *cache.Disk
	histLog      *history.Log
	remuter      *mute.Remuter

	compressor *dsp.Compressor
	processed  *cache.LRU

	// Raw decoded clips, keyed by path. Cleared on reload.
	raw map[string]*beep.Buffer

	current settings.Settings
}

// NewManager creates a manager with the given settings already loaded.
func NewManager(opts ManagerOptions, current settings.Settings) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		logger:       logger,
		library:      opts.Library,
		player:       opts.Player,
		settingsFile: opts.SettingsFile,
		disk:         opts.DiskCache,
		histLog:      opts.History,
		remuter:      opts.Remuter,
		compressor:   dsp.NewCompressor(),
		processed:    cache.NewLRU(current.Compressor.CacheMaxItems),
		raw:          make(map[string]*beep.Buffer),
		current:      current,
	}
}

// Settings returns a snapshot of the current settings.
func (m *Manager) Settings() settings.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Play plays the clip identified by key. With raw set the compressor is
// bypassed. The returned channel closes when the clip finishes.
func (m *Manager) Play(key string, raw bool) (<-chan struct{}, error) {
	clip, ok := m.library.Get(key)
	if !ok {
		return nil, fmt.Errorf("unknown clip: %s", key)
	}

	s := m.Settings()

	if !s.Overlap {
		m.player.StopAll()
	}

	if s.SmartMute && m.remuter != nil {
		m.remuter.EnsureAudible()
	}

	compressed := false
	var buffer *beep.Buffer
	var err error

	if s.Compressor.Enabled && !raw {
		buffer, err = m.processedBuffer(clip, s.Compressor)
		if err != nil {
			m.logger.Warn("compressor processing failed, playing raw",
				"clip", clip.Key, "error", err)
		} else {
			compressed = true
		}
	}

	if buffer == nil {
		buffer, err = m.rawBuffer(clip)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", clip.Key, err)
		}
	}

	done, err := m.player.Play(buffer)
	if err != nil {
		return nil, fmt.Errorf("play %s: %w", clip.Key, err)
	}
	m.recordPlay(clip, s, compressed)
	return done, nil
}

// processedBuffer returns the compressed clip, consulting the memory LRU,
// then the disk cache, then processing from scratch.
func (m *Manager) processedBuffer(clip model.SoundClip, cs model.CompressorSettings) (*beep.Buffer, error) {
	signature := cs.Signature()
	key := cache.Key{Clip: clip.Key, Signature: signature}

	if buffer, ok := m.processed.Get(key); ok {
		return buffer, nil
	}

	if m.disk != nil {
		if buffer, ok := m.disk.Load(clip.Path, signature); ok {
			m.processed.Put(key, buffer)
			return buffer, nil
		}
	}

	rawBuffer, err := m.rawBuffer(clip)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("processing audio", "clip", clip.Key, "signature", signature)

	format := rawBuffer.Format()
	samples := collectSamples(rawBuffer)
	shaped := m.compressor.Process(samples, format.SampleRate, cs)
	buffer := bufferFromSamples(shaped, format)

	if m.disk != nil {
		if err := m.disk.Save(clip.Path, signature, buffer); err != nil {
			m.logger.Warn("could not save disk cache", "clip", clip.Key, "error", err)
		}
	}

	m.processed.Put(key, buffer)
	return buffer, nil
}

// rawBuffer returns the decoded clip, loading and caching it on first use.
func (m *Manager) rawBuffer(clip model.SoundClip) (*beep.Buffer, error) {
	m.mu.Lock()
	buffer, ok := m.raw[clip.Path]
	m.mu.Unlock()
	if ok {
		return buffer, nil
	}

	buffer, err := m.player.Load(clip.Path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.raw[clip.Path] = buffer
	m.mu.Unlock()
	return buffer, nil
}

// recordPlay appends a history entry (best effort).
func (m *Manager) recordPlay(clip model.SoundClip, s settings.Settings, compressed bool) {
	if m.histLog == nil {
		return
	}

	mode := ModeInterrupt
	if s.Overlap {
		mode = ModeOverlap
	}

	entry, err := history.NewEntry(clip.Key, clip.Group, clip.Path, mode, compressed)
	if err == nil {
		err = m.histLog.Append(entry)
	}
	if err != nil {
		m.logger.Warn("could not record playback history", "clip", clip.Key, "error", err)
	}
}

// StopAll stops every playing clip. A pending remute completes once the
// poller observes the idle board.
func (m *Manager) StopAll() {
	m.player.StopAll()
}

// Busy reports whether any clip is still playing.
func (m *Manager) Busy() bool {
	return m.player.Busy()
}

// SetOverlap selects overlap (true) or interrupt (false) playback mode.
func (m *Manager) SetOverlap(overlap bool) error {
	m.mu.Lock()
	m.current.Overlap = overlap
	s := m.current
	m.mu.Unlock()
	return m.save(s)
}

// SetSmartMute enables or disables smart unmute/remute.
func (m *Manager) SetSmartMute(enabled bool) error {
	m.mu.Lock()
	m.current.SmartMute = enabled
	s := m.current
	m.mu.Unlock()
	return m.save(s)
}

// SetCompressorEnabled toggles the compressor without invalidating caches;
// processed audio under the current signature stays valid.
func (m *Manager) SetCompressorEnabled(enabled bool) error {
	m.mu.Lock()
	m.current.Compressor.Enabled = enabled
	s := m.current
	m.mu.Unlock()

	m.logger.Info("compressor toggled", "enabled", enabled)
	return m.save(s)
}

// UpdateCompressor applies a parameter change. The revision is bumped and
// both caches are cleared since previously processed audio is stale.
func (m *Manager) UpdateCompressor(mutate func(*model.CompressorSettings)) error {
	m.mu.Lock()
	mutate(&m.current.Compressor)
	m.current.Compressor.Clamp()
	m.current.Compressor.Revision++
	s := m.current
	m.mu.Unlock()

	m.invalidateProcessed(s.Compressor.CacheMaxItems)
	return m.save(s)
}

// ResetCompressor restores factory defaults, keeping the revision counter
// moving forward.
func (m *Manager) ResetCompressor() error {
	m.mu.Lock()
	revision := m.current.Compressor.Revision + 1
	m.current.Compressor = model.DefaultCompressorSettings()
	m.current.Compressor.Revision = revision
	s := m.current
	m.mu.Unlock()

	m.invalidateProcessed(s.Compressor.CacheMaxItems)
	return m.save(s)
}

// invalidateProcessed clears both processed-audio caches.
func (m *Manager) invalidateProcessed(capacity int) {
	m.processed.SetCapacity(capacity)
	m.processed.Clear()
	if m.disk != nil {
		if err := m.disk.Clear(); err != nil {
			m.logger.Warn("could not clear disk cache", "error", err)
		}
	}
}

// save persists settings to disk.
func (m *Manager) save(s settings.Settings) error {
	if m.settingsFile == nil {
		return nil
	}
	if err := m.settingsFile.Save(s); err != nil {
		m.logger.Warn("could not save settings", "error", err)
		return err
	}
	return nil
}

// Reload stops playback, drops decoded audio, and rescans the library.
// The compressor revision is not bumped: settings did not change, so the
// disk cache stays valid.
func (m *Manager) Reload() error {
	m.StopAll()

	m.mu.Lock()
	m.raw = make(map[string]*beep.Buffer)
	m.mu.Unlock()
	m.processed.Clear()

	return m.library.Scan()
}

// Close stops playback and releases the player.
func (m *Manager) Close() {
	if m.remuter != nil {
		m.remuter.Stop()
	}
	m.player.Close()
	m.logger.Debug("audio manager closed")
}

// collectSamples drains a buffer into a sample slice.
func collectSamples(buffer *beep.Buffer) [][2]float64 {
	streamer := buffer.Streamer(0, buffer.Len())
	samples := make([][2]float64, 0, buffer.Len())

	chunk := make([][2]float64, 512)
	for {
		n, ok := streamer.Stream(chunk)
		samples = append(samples, chunk[:n]...)
		if !ok {
			return samples
		}
	}
}

// bufferFromSamples builds a buffer in the given format from sample frames.
func bufferFromSamples(samples [][2]float64, format beep.Format) *beep.Buffer {
	buffer := beep.NewBuffer(format)
	buffer.Append(&sampleStreamer{samples: samples})
	return buffer
}

// sampleStreamer streams a fixed sample slice once.
type sampleStreamer struct {
	samples [][2]float64
	pos     int
}

func (s *sampleStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n = copy(samples, s.samples[s.pos:])
	s.pos += n
	return n, true
}

func (s *sampleStreamer) Err() error { return nil }
