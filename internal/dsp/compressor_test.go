package dsp

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmnunley/Soundboard/internal/model"
)

const testRate = beep.SampleRate(44100)

func constantSignal(level float64, n int) [][2]float64 {
	samples := make([][2]float64, n)
	for i := range samples {
		samples[i] = [2]float64{level, level}
	}
	return samples
}

func TestCompressor_EmptyInput(t *testing.T) {
	c := NewCompressor()
	out := c.Process(nil, testRate, model.DefaultCompressorSettings())
	assert.Empty(t, out)
}

func TestCompressor_BelowThresholdUnchanged(t *testing.T) {
	c := NewCompressor()
	s := model.DefaultCompressorSettings()
	s.ThresholdDB = -6.0
	s.OutputCeilingDB = 0.0

	// -20 dB signal, well below the -6 dB threshold.
	in := constantSignal(0.1, 1000)
	out := c.Process(in, testRate, s)

	require.Len(t, out, len(in))
	for _, frame := range out[100:] {
		assert.InDelta(t, 0.1, frame[0], 1e-9)
		assert.InDelta(t, 0.1, frame[1], 1e-9)
	}
}

func TestCompressor_ReducesLevelAboveThreshold(t *testing.T) {
	c := NewCompressor()
	s := model.DefaultCompressorSettings()
	s.ThresholdDB = -18.0
	s.Ratio = 4.0
	s.AttackMs = 1.0
	s.ReleaseMs = 1.0
	s.OutputCeilingDB = 0.0

	// 0 dB signal, 18 dB over threshold. With 4:1 ratio the steady state
	// output should approach threshold + 18/4 = -13.5 dB.
	in := constantSignal(1.0, testRate.N(time.Second))
	out := c.Process(in, testRate, s)

	steady := out[len(out)-1][0]
	steadyDB := 20.0 * math.Log10(steady)
	assert.InDelta(t, -13.5, steadyDB, 0.5)
}

func TestCompressor_CeilingClip(t *testing.T) {
	c := NewCompressor()
	s := model.DefaultCompressorSettings()
	s.Enabled = true
	s.ThresholdDB = 0.0 // compression inactive
	s.MakeupGainDB = 12.0
	s.OutputCeilingDB = -1.0

	in := constantSignal(0.9, 500)
	out := c.Process(in, testRate, s)

	ceiling := math.Pow(10.0, -1.0/20.0)
	for _, frame := range out {
		assert.LessOrEqual(t, frame[0], ceiling)
		assert.GreaterOrEqual(t, frame[0], -ceiling)
	}
}

func TestCompressor_InputGainApplied(t *testing.T) {
	c := NewCompressor()
	s := model.DefaultCompressorSettings()
	s.ThresholdDB = 0.0
	s.InputGainDB = -6.0
	s.OutputCeilingDB = 0.0

	in := constantSignal(0.5, 100)
	out := c.Process(in, testRate, s)

	expected := 0.5 * math.Pow(10.0, -6.0/20.0)
	assert.InDelta(t, expected, out[50][0], 1e-9)
}

func TestCompressor_DoesNotModifyInput(t *testing.T) {
	c := NewCompressor()
	s := model.DefaultCompressorSettings()
	s.InputGainDB = 6.0

	in := constantSignal(0.5, 10)
	_ = c.Process(in, testRate, s)

	for _, frame := range in {
		assert.Equal(t, 0.5, frame[0])
	}
}
