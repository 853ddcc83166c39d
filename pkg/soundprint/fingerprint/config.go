package fingerprint

import (
	"fmt"

	"github.com/himanishpuri/SoundPrint/pkg/soundprint/audio"
)

// Tunables
const (
	DefaultImageLength  = 128
	DefaultLogBins      = 32
	DefaultTopWavelets  = 200
	DefaultWdftSize     = 2048
	DefaultOverlap      = 64
	DefaultMinFrequency = 318
	DefaultMaxFrequency = 2000
	DefaultLogBase      = 2
	DefaultStride       = 5115
)

// Configuration controls how samples turn into fingerprints. It is a value
// type and is only read by the pipeline.
type Configuration struct {
	Stride          Stride
	ImageLength     int // frames per spectral image (rows)
	LogBins         int // log-frequency buckets (cols)
	TopWavelets     int
	NormalizeSignal bool
	WdftSize        int
	Overlap         int // frame hop in samples
	MinFrequency    float64
	MaxFrequency    float64
	SampleRate      int
	LogBase         float64
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Stride:       NewStaticStride(DefaultStride),
		ImageLength:  DefaultImageLength,
		LogBins:      DefaultLogBins,
		TopWavelets:  DefaultTopWavelets,
		WdftSize:     DefaultWdftSize,
		Overlap:      DefaultOverlap,
		MinFrequency: DefaultMinFrequency,
		MaxFrequency: DefaultMaxFrequency,
		SampleRate:   audio.DefaultSampleRate,
		LogBase:      DefaultLogBase,
	}
}

// SignatureLength is the number of bits in every fingerprint.
func (c Configuration) SignatureLength() int {
	return c.ImageLength * c.LogBins
}

// SamplesPerImage is the span of audio a single image covers, in samples,
// ignoring the trailing window.
func (c Configuration) SamplesPerImage() int {
	return c.ImageLength * c.Overlap
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

func (c Configuration) Validate() error {
	switch {
	case c.ImageLength <= 0:
		return invalid("image length must be positive, got %d", c.ImageLength)
	case c.LogBins <= 0:
		return invalid("log bins must be positive, got %d", c.LogBins)
	case c.TopWavelets <= 0:
		return invalid("top wavelets must be positive, got %d", c.TopWavelets)
	case c.WdftSize <= 0:
		return invalid("wdft size must be positive, got %d", c.WdftSize)
	case c.Overlap <= 0:
		return invalid("overlap must be positive, got %d", c.Overlap)
	case c.SampleRate <= 0:
		return invalid("sample rate must be positive, got %d", c.SampleRate)
	case c.MinFrequency <= 0:
		return invalid("min frequency must be positive, got %g", c.MinFrequency)
	case c.MinFrequency >= c.MaxFrequency:
		return invalid("min frequency %g must be below max frequency %g", c.MinFrequency, c.MaxFrequency)
	case c.MaxFrequency > float64(c.SampleRate)/2:
		return invalid("max frequency %g exceeds nyquist %d", c.MaxFrequency, c.SampleRate/2)
	case c.LogBase <= 1:
		return invalid("log base must be greater than 1, got %g", c.LogBase)
	case c.Stride == nil:
		return invalid("stride is required")
	}

	if c.Stride.FirstStride() < 0 {
		return invalid("first stride must not be negative, got %d", c.Stride.FirstStride())
	}
	// images must advance by at least one frame
	if c.SamplesPerImage()+c.Stride.MinStride() < c.Overlap {
		return invalid("stride %d does not advance past the previous image", c.Stride.MinStride())
	}
	return nil
}
