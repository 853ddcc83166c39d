package fingerprint

import "slices"

// SpectralImage is a row-major block of ImageLength log spectra, each
// LogBins wide. The image owns its buffer; the wavelet stage rewrites it.
type SpectralImage struct {
	Image          []float64
	Rows           int
	Cols           int
	StartsAt       int // offset of the first frame, in samples
	SequenceNumber int
}

// StartsAtSeconds converts StartsAt for the given sample rate.
func (s SpectralImage) StartsAtSeconds(sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(s.StartsAt) / float64(sampleRate)
}

type Fingerprint struct {
	Signature      Signature
	StartsAt       int
	SequenceNumber int
}

// SortBySequence orders fingerprints by SequenceNumber in place.
func SortBySequence(fps []Fingerprint) {
	slices.SortFunc(fps, func(a, b Fingerprint) int {
		return a.SequenceNumber - b.SequenceNumber
	})
}
