package fingerprint

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Normalizer rescales a sample buffer in place. Length is preserved.
type Normalizer interface {
	NormalizeInPlace(samples []float64)
}

const (
	minRMS = 0.1
	maxRMS = 3.0
)

// RMSNormalizer divides by ten times the signal RMS, clamped to [0.1, 3],
// then clips every sample to [-1, 1].
type RMSNormalizer struct{}

func (RMSNormalizer) NormalizeInPlace(samples []float64) {
	if len(samples) == 0 {
		return
	}
	rms := math.Sqrt(floats.Dot(samples, samples)/float64(len(samples))) * 10
	rms = math.Min(math.Max(rms, minRMS), maxRMS)

	floats.Scale(1/rms, samples)
	clip(samples)
}

// PeakNormalizer scales the buffer so its largest absolute sample is 1.
// Silent buffers are left untouched.
type PeakNormalizer struct{}

func (PeakNormalizer) NormalizeInPlace(samples []float64) {
	if len(samples) == 0 {
		return
	}
	peak := floats.Norm(samples, math.Inf(1))
	if peak == 0 || math.IsNaN(peak) || math.IsInf(peak, 0) {
		return
	}
	floats.Scale(1/peak, samples)
}

func clip(samples []float64) {
	for i, s := range samples {
		switch {
		case s > 1:
			samples[i] = 1
		case s < -1:
			samples[i] = -1
		}
	}
}
