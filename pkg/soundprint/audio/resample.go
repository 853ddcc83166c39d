package audio

import (
	"errors"
	"fmt"

	resampler "github.com/tphakala/go-audio-resampler"
)

// Downmix averages interleaved multi-channel samples into a single channel.
func Downmix(interleaved []float64, channels int) ([]float64, error) {
	switch {
	case channels <= 0:
		return nil, errors.New("channel count must be positive")
	case channels == 1:
		return interleaved, nil
	}

	frames := len(interleaved) / channels
	out := make([]float64, frames)
	inv := 1.0 / float64(channels)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		out[i] = sum * inv
	}
	return out, nil
}

// ResampleQuality is the preset used for every rate conversion.
const ResampleQuality = resampler.QualityHigh

// Resample converts mono samples from one rate to another with a polyphase
// FIR resampler. Content above the target Nyquist frequency is removed.
func Resample(samples []float64, from, to int) ([]float64, error) {
	if from <= 0 || to <= 0 {
		return nil, errors.New("sample rates must be positive")
	}
	if from == to || len(samples) == 0 {
		return samples, nil
	}

	out, err := resampler.ResampleMono(samples, float64(from), float64(to), ResampleQuality)
	if err != nil {
		return nil, fmt.Errorf("resampling %d Hz to %d Hz: %w", from, to, err)
	}
	return out, nil
}

func toSamples(mono []float64, rate, target int, origin string) (*Samples, error) {
	if target <= 0 {
		target = rate
	}
	data, err := Resample(mono, rate, target)
	if err != nil {
		return nil, err
	}
	return &Samples{Data: data, SampleRate: target, Origin: origin}, nil
}
