package soundprint

import (
	"errors"
	"time"

	"github.com/himanishpuri/SoundPrint/pkg/soundprint/fingerprint"
)

// ErrNoFingerprints is returned when a source is silent or shorter than
// one spectral image.
var ErrNoFingerprints = errors.New("no fingerprints produced")

// ErrFileNotFound is returned when an input path is not a regular file.
var ErrFileNotFound = errors.New("audio file not found")

// FileFingerprints is the fingerprint set of one decoded file.
type FileFingerprints struct {
	Path         string
	Duration     time.Duration
	SampleRate   int
	Images       int                       // spectral images built, including silent ones
	Fingerprints []fingerprint.Fingerprint // sorted by sequence number
}

// CompareResult reports how two files' fingerprints differ bit by bit.
type CompareResult struct {
	A, B *FileFingerprints
	fingerprint.Comparison
}

// Consistent reports whether the two sets have equal counts and differ in
// fewer than maxRatio of their bits.
func (r CompareResult) Consistent(maxRatio float64) bool {
	return r.CountA == r.CountB && r.DiffRatio() < maxRatio
}
