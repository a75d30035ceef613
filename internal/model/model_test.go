package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAudioFile(t *testing.T) {
	assert.True(t, IsAudioFile("horn.wav"))
	assert.True(t, IsAudioFile("Horn.WAV"))
	assert.True(t, IsAudioFile("clip.ogg"))
	assert.True(t, IsAudioFile("clip.mp3"))
	assert.False(t, IsAudioFile("readme.txt"))
	assert.False(t, IsAudioFile("clip.flac"))
	assert.False(t, IsAudioFile("noext"))
}

func TestClipLabel(t *testing.T) {
	assert.Equal(t, "air horn", ClipLabel("air_horn.wav"))
	assert.Equal(t, "sad trombone", ClipLabel("sad trombone.mp3"))
	assert.Equal(t, "beep", ClipLabel("beep.ogg"))
}

func TestClipKey(t *testing.T) {
	assert.Equal(t, "horn.wav", ClipKey("", "horn.wav"))
	assert.Equal(t, "memes/horn.wav", ClipKey("memes", "horn.wav"))
}

func TestDefaultCompressorSettings(t *testing.T) {
	s := DefaultCompressorSettings()

	assert.True(t, s.Enabled)
	assert.Equal(t, 0.0, s.InputGainDB)
	assert.Equal(t, -18.0, s.ThresholdDB)
	assert.Equal(t, 4.0, s.Ratio)
	assert.Equal(t, 10.0, s.AttackMs)
	assert.Equal(t, 120.0, s.ReleaseMs)
	assert.Equal(t, 0.0, s.MakeupGainDB)
	assert.Equal(t, -1.0, s.OutputCeilingDB)
	assert.Equal(t, 32, s.CacheMaxItems)
	assert.Equal(t, 0, s.Revision)
}

func TestCompressorSettings_Clamp(t *testing.T) {
	s := CompressorSettings{
		Ratio:         0.5,
		AttackMs:      0,
		ReleaseMs:     -10,
		CacheMaxItems: 0,
		Revision:      -1,
	}
	s.Clamp()

	assert.Equal(t, 1.0, s.Ratio)
	assert.Equal(t, 1.0, s.AttackMs)
	assert.Equal(t, 1.0, s.ReleaseMs)
	assert.Equal(t, 1, s.CacheMaxItems)
	assert.Equal(t, 0, s.Revision)
}

func TestCompressorSettings_Signature(t *testing.T) {
	s := DefaultCompressorSettings()
	sig := s.Signature()

	assert.Equal(t, "ig=0.000|th=-18.000|ra=4.000|at=10.000|re=120.000|mk=0.000|ce=-1.000", sig)

	// Cache capacity and revision must not influence the signature.
	s.CacheMaxItems = 7
	s.Revision = 42
	assert.Equal(t, sig, s.Signature())

	// Audible parameters must.
	s.ThresholdDB = -20.0
	assert.NotEqual(t, sig, s.Signature())
}
