package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayer_PlayEmptyBuffer(t *testing.T) {
	p := NewPlayer(0, testLogger)

	done, err := p.Play(nil)
	require.NoError(t, err)

	select {
	case <-done:
	default:
		t.Fatal("done channel should be closed for an empty buffer")
	}
	assert.False(t, p.Busy())
}

func TestPlayer_StopAllClosesDoneChannels(t *testing.T) {
	p := NewPlayer(0, testLogger)
	t.Cleanup(p.Close)

	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	buffer := bufferFromSamples(make([][2]float64, 5*44100), format)

	done, err := p.Play(buffer)
	if err != nil {
		t.Skipf("no audio output device: %v", err)
	}
	require.True(t, p.Busy())

	p.StopAll()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done channel not closed by StopAll")
	}
	assert.False(t, p.Busy())
}
