package audio

import (
	"context"
	"time"
)

// DefaultSampleRate is the rate the fingerprinting pipeline expects by default.
const DefaultSampleRate = 5512

// Samples holds mono PCM samples in the range [-1, 1] together with their
// sample rate. A decoded Samples value is owned by the caller and is treated
// as read-only by the fingerprinting pipeline.
type Samples struct {
	Data       []float64
	SampleRate int
	Origin     string // source path or identifier, informational only
}

// Duration returns the length of the audio.
func (s *Samples) Duration() time.Duration {
	if s == nil || s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(s.Data)) / float64(s.SampleRate) * float64(time.Second))
}

// Decoder turns a source into mono samples at the requested sample rate.
type Decoder interface {
	Decode(ctx context.Context, path string, sampleRate int) (*Samples, error)
}
