package audio

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Player handles low-level playback through the speaker.
type Player struct {
	mu     sync.Mutex
	logger *slog.Logger

	// Volume control (0.0 to 1.0)
	volume float64

	// Whether speaker has been initialized
	initialized bool

	// Sample rate the speaker runs at
	sampleRate beep.SampleRate

	// Speaker buffer length
	bufferLen time.Duration

	// Finish callbacks of streamers still playing, by play ID. An entry
	// is removed when its clip ends or playback is cleared; each finish
	// func closes that play's done channel exactly once.
	nextID  int
	playing map[int]func()
}

// NewPlayer creates a new player. The speaker is initialized lazily from
// the first decoded clip's format.
func NewPlayer(bufferLen time.Duration, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	if bufferLen <= 0 {
		bufferLen = 100 * time.Millisecond
	}

	return &Player{
		logger:     logger,
		volume:     1.0,
		sampleRate: beep.SampleRate(44100),
		bufferLen:  bufferLen,
		playing:    make(map[int]func()),
	}
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	p.volume = volume
}

// GetVolume returns the current volume.
func (p *Player) GetVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Load decodes an audio file into a buffer.
// Supports WAV, OGG, and MP3 formats.
func (p *Player) Load(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sound file: %w", err)
	}
	defer func() { _ = f.Close() }()

	ext := strings.ToLower(filepath.Ext(path))

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}

	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer func() { _ = streamer.Close() }()

	if err := p.ensureInitialized(format.SampleRate); err != nil {
		return nil, err
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)

	return buffer, nil
}

// ensureInitialized initializes the speaker if not already done.
func (p *Player) ensureInitialized(sampleRate beep.SampleRate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	bufferSize := sampleRate.N(p.bufferLen)
	if err := speaker.Init(sampleRate, bufferSize); err != nil {
		return fmt.Errorf("initialize speaker: %w", err)
	}

	p.sampleRate = sampleRate
	p.initialized = true
	p.logger.Debug("speaker initialized", "sample_rate", sampleRate)
	return nil
}

// Play starts playback of a buffered clip. The returned channel is closed
// when the clip finishes or playback is stopped. The speaker is initialized
// from the buffer's format if this is the first play, so buffers decoded
// elsewhere (the disk cache) play correctly too.
func (p *Player) Play(buffer *beep.Buffer) (<-chan struct{}, error) {
	done := make(chan struct{})
	if buffer == nil || buffer.Len() == 0 {
		close(done)
		return done, nil
	}

	if err := p.ensureInitialized(buffer.Format().SampleRate); err != nil {
		close(done)
		return done, err
	}

	p.mu.Lock()
	volume := p.volume
	sampleRate := p.sampleRate
	id := p.nextID
	p.nextID++
	p.mu.Unlock()

	var streamer beep.Streamer = buffer.Streamer(0, buffer.Len())

	if buffer.Format().SampleRate != sampleRate {
		streamer = beep.Resample(4, buffer.Format().SampleRate, sampleRate, streamer)
	}

	if volume < 1.0 {
		streamer = &effects.Volume{
			Streamer: streamer,
			Base:     2,
			Volume:   linearToLog2(volume),
			Silent:   volume == 0,
		}
	}

	var once sync.Once
	finish := func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.playing, id)
			p.mu.Unlock()
			close(done)
		})
	}

	// Register before handing the streamer to the speaker: the end
	// callback may fire from the audio goroutine at any point after.
	p.mu.Lock()
	p.playing[id] = finish
	p.mu.Unlock()

	speaker.Play(beep.Seq(streamer, beep.Callback(finish)))
	return done, nil
}

// StopAll stops every playing clip immediately. The done channels of the
// cleared plays are closed; speaker.Clear drops their end callbacks.
func (p *Player) StopAll() {
	p.mu.Lock()
	initialized := p.initialized
	finishers := make([]func(), 0, len(p.playing))
	for _, finish := range p.playing {
		finishers = append(finishers, finish)
	}
	p.mu.Unlock()

	if initialized {
		speaker.Clear()
	}
	for _, finish := range finishers {
		finish()
	}
}

// Busy reports whether any clip is still playing.
func (p *Player) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.playing) > 0
}

// Close stops all playback and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	initialized := p.initialized
	p.initialized = false
	finishers := make([]func(), 0, len(p.playing))
	for _, finish := range p.playing {
		finishers = append(finishers, finish)
	}
	p.mu.Unlock()

	if initialized {
		speaker.Clear()
		speaker.Close()
	}
	for _, finish := range finishers {
		finish()
	}
	p.logger.Debug("audio player closed")
}

// linearToLog2 converts a linear volume (0-1] to the exponent used by
// effects.Volume with base 2.
func linearToLog2(volume float64) float64 {
	if volume <= 0 {
		return -20 // effectively silent
	}
	return math.Log2(volume)
}
