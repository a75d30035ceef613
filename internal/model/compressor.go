package model

import "fmt"

// CompressorSettings holds the parameters of the dynamics compressor applied
// to clips before playback. All gain values are in decibels, times in
// milliseconds.
type CompressorSettings struct {
	Enabled         bool    `json:"compressor_enabled"`
	InputGainDB     float64 `json:"compressor_input_gain_db"`
	ThresholdDB     float64 `json:"compressor_threshold_db"`
	Ratio           float64 `json:"compressor_ratio"`
	AttackMs        float64 `json:"compressor_attack_ms"`
	ReleaseMs       float64 `json:"compressor_release_ms"`
	MakeupGainDB    float64 `json:"compressor_makeup_gain_db"`
	OutputCeilingDB float64 `json:"compressor_output_ceiling_db"`

	// CacheMaxItems caps the in-memory processed clip cache.
	CacheMaxItems int `json:"compressor_cache_max_items"`

	// Revision increments whenever a parameter changes, invalidating
	// previously processed audio.
	Revision int `json:"compressor_revision"`
}

// DefaultCompressorSettings returns the factory defaults.
func DefaultCompressorSettings() CompressorSettings {
	return CompressorSettings{
		Enabled:         true,
		InputGainDB:     0.0,
		ThresholdDB:     -18.0,
		Ratio:           4.0,
		AttackMs:        10.0,
		ReleaseMs:       120.0,
		MakeupGainDB:    0.0,
		OutputCeilingDB: -1.0,
		CacheMaxItems:   32,
		Revision:        0,
	}
}

// Clamp enforces parameter floors: ratio >= 1, attack/release >= 1ms,
// cache capacity >= 1, revision >= 0.
func (s *CompressorSettings) Clamp() {
	if s.Ratio < 1.0 {
		s.Ratio = 1.0
	}
	if s.AttackMs < 1.0 {
		s.AttackMs = 1.0
	}
	if s.ReleaseMs < 1.0 {
		s.ReleaseMs = 1.0
	}
	if s.CacheMaxItems < 1 {
		s.CacheMaxItems = 1
	}
	if s.Revision < 0 {
		s.Revision = 0
	}
}

// Signature returns a stable string identifying the audible parameters.
// Processed audio cached under one signature is reusable only for identical
// settings; the cache capacity and revision are deliberately excluded.
func (s *CompressorSettings) Signature() string {
	return fmt.Sprintf("ig=%.3f|th=%.3f|ra=%.3f|at=%.3f|re=%.3f|mk=%.3f|ce=%.3f",
		s.InputGainDB,
		s.ThresholdDB,
		s.Ratio,
		s.AttackMs,
		s.ReleaseMs,
		s.MakeupGainDB,
		s.OutputCeilingDB,
	)
}
