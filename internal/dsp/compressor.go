// Package dsp implements the dynamics compressor applied to clips before
// playback. It operates on interleaved stereo sample frames as produced by
// the beep decoders.
package dsp

import (
	"math"

	"github.com/gopxl/beep/v2"

	"github.com/kmnunley/Soundboard/internal/model"
)

const epsilon = 1e-9

// Compressor shapes audio according to CompressorSettings: input gain, a
// peak-envelope gain computer with attack/release smoothing, makeup gain,
// and a hard ceiling clip.
type Compressor struct{}

// NewCompressor creates a compressor engine.
func NewCompressor() *Compressor {
	return &Compressor{}
}

// Process returns a compressed copy of samples. The input is not modified.
// Empty input is returned as-is.
func (c *Compressor) Process(samples [][2]float64, sr beep.SampleRate, s model.CompressorSettings) [][2]float64 {
	if len(samples) == 0 {
		return samples
	}

	out := make([][2]float64, len(samples))
	inputGain := dbToLinear(s.InputGainDB)
	for i, frame := range samples {
		out[i][0] = frame[0] * inputGain
		out[i][1] = frame[1] * inputGain
	}

	gain := c.gainCurve(out, sr, s)
	makeup := dbToLinear(s.MakeupGainDB)
	ceiling := math.Max(epsilon, dbToLinear(s.OutputCeilingDB))

	for i := range out {
		l := out[i][0] * gain[i] * makeup
		r := out[i][1] * gain[i] * makeup
		out[i][0] = clamp(l, -ceiling, ceiling)
		out[i][1] = clamp(r, -ceiling, ceiling)
	}

	return out
}

// gainCurve computes the per-frame gain reduction. The envelope follows the
// frame peak (max of both channels) through a one-pole smoother whose
// coefficient switches between attack and release.
func (c *Compressor) gainCurve(samples [][2]float64, sr beep.SampleRate, s model.CompressorSettings) []float64 {
	attackS := math.Max(0.001, s.AttackMs/1000.0)
	releaseS := math.Max(0.001, s.ReleaseMs/1000.0)
	attackCoeff := math.Exp(-1.0 / (attackS * float64(sr)))
	releaseCoeff := math.Exp(-1.0 / (releaseS * float64(sr)))

	threshold := s.ThresholdDB
	ratio := math.Max(1.0, s.Ratio)
	env := 0.0

	gain := make([]float64, len(samples))
	for i, frame := range samples {
		peak := math.Max(math.Abs(frame[0]), math.Abs(frame[1]))

		coeff := releaseCoeff
		if peak > env {
			coeff = attackCoeff
		}
		env = (coeff * env) + ((1.0 - coeff) * peak)

		envDB := 20.0 * math.Log10(math.Max(env, epsilon))
		if envDB <= threshold {
			gain[i] = 1.0
			continue
		}

		overDB := envDB - threshold
		compressedDB := threshold + (overDB / ratio)
		reductionDB := compressedDB - envDB
		gain[i] = dbToLinear(reductionDB)
	}

	return gain
}

func dbToLinear(db float64) float64 {
	return math.Pow(10.0, db/20.0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
