package fingerprint

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/himanishpuri/SoundPrint/pkg/soundprint/audio"
)

// SpectrumBuilder turns mono samples into spectral images.
type SpectrumBuilder interface {
	CreateLogSpectrogram(samples *audio.Samples, cfg Configuration) ([]SpectralImage, error)
}

// LogSpectrumBuilder frames the signal every Overlap samples, takes the
// Hann-windowed FFT magnitude of each frame, folds it into LogBins
// log-spaced buckets and cuts the result into images of ImageLength frames.
type LogSpectrumBuilder struct{}

func (b LogSpectrumBuilder) CreateLogSpectrogram(samples *audio.Samples, cfg Configuration) ([]SpectralImage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if samples == nil {
		return nil, fmt.Errorf("%w: nil samples", ErrInvalidConfiguration)
	}
	if samples.SampleRate != cfg.SampleRate {
		return nil, fmt.Errorf("%w: got %d Hz, want %d Hz", ErrSampleRateMismatch, samples.SampleRate, cfg.SampleRate)
	}

	frames, err := LogSpectrogram(samples.Data, cfg)
	if err != nil {
		return nil, err
	}
	return CutImages(frames, cfg), nil
}

// FrameCount is the number of frames taken from n samples: one every
// Overlap samples. Frames near the end read past the input and are
// zero-padded, so an input of k*SamplesPerImage samples yields k images
// with a zero stride. Input shorter than one window has no frames.
func FrameCount(n int, cfg Configuration) int {
	if n < cfg.WdftSize {
		return 0
	}
	return n / cfg.Overlap
}

// LogSpectrogram returns one row of LogBins averaged magnitudes per frame.
func LogSpectrogram(data []float64, cfg Configuration) ([][]float64, error) {
	count := FrameCount(len(data), cfg)
	if count == 0 {
		return nil, nil
	}

	win := window.Hann(cfg.WdftSize)
	idx := LogFrequencyIndexes(cfg)
	frame := make([]float64, cfg.WdftSize)
	// FFT magnitudes are scaled so a full-scale sine peaks near 1
	scale := 2.0 / float64(cfg.WdftSize)

	rows := make([][]float64, count)
	for f := 0; f < count; f++ {
		start := f * cfg.Overlap
		avail := min(cfg.WdftSize, len(data)-start)
		for i := 0; i < avail; i++ {
			frame[i] = data[start+i] * win[i]
		}
		clear(frame[avail:])
		fftOut := fft.FFTReal(frame)

		row := make([]float64, cfg.LogBins)
		for bin := 0; bin < cfg.LogBins; bin++ {
			lo, hi := idx[bin], idx[bin+1]
			if hi <= lo {
				hi = lo + 1
			}
			var sum float64
			for k := lo; k < hi; k++ {
				sum += cmplx.Abs(fftOut[k]) * scale
			}
			v := sum / float64(hi-lo)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: frame %d bin %d", ErrNonFiniteValue, f, bin)
			}
			row[bin] = v
		}
		rows[f] = row
	}
	return rows, nil
}

// LogFrequencyIndexes returns LogBins+1 FFT bin edges, log-spaced between
// MinFrequency and MaxFrequency.
func LogFrequencyIndexes(cfg Configuration) []int {
	logMin := math.Log(cfg.MinFrequency) / math.Log(cfg.LogBase)
	logMax := math.Log(cfg.MaxFrequency) / math.Log(cfg.LogBase)
	delta := (logMax - logMin) / float64(cfg.LogBins)

	idx := make([]int, cfg.LogBins+1)
	for i := range idx {
		freq := math.Pow(cfg.LogBase, logMin+float64(i)*delta)
		idx[i] = freqToIndex(freq, cfg.SampleRate, cfg.WdftSize)
	}
	return idx
}

func freqToIndex(freq float64, sampleRate, wdftSize int) int {
	fraction := freq / (float64(sampleRate) / 2)
	i := int(math.Round(float64(wdftSize/2+1) * fraction))
	// the last usable bin is wdft/2 and a bucket needs one bin past lo
	return min(max(i, 0), wdftSize/2)
}

// CutImages groups frames into images of ImageLength rows. Image boundaries
// follow the configured stride, converted from samples to frames.
func CutImages(frames [][]float64, cfg Configuration) []SpectralImage {
	next := cfg.Stride.Iterator()
	start := cfg.Stride.FirstStride() / cfg.Overlap

	var images []SpectralImage
	seq := 1
	for start+cfg.ImageLength <= len(frames) {
		img := make([]float64, 0, cfg.ImageLength*cfg.LogBins)
		for r := start; r < start+cfg.ImageLength; r++ {
			img = append(img, frames[r]...)
		}
		images = append(images, SpectralImage{
			Image:          img,
			Rows:           cfg.ImageLength,
			Cols:           cfg.LogBins,
			StartsAt:       start * cfg.Overlap,
			SequenceNumber: seq,
		})
		seq++
		start += cfg.ImageLength + next()/cfg.Overlap
	}
	return images
}
