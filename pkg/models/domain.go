package models

import "github.com/himanishpuri/SoundPrint/pkg/soundprint/fingerprint"

// Track represents a track entry in the database.
type Track struct {
	ID          string // Database ID (UUID)
	Title       string // Track title
	Artist      string // Artist name
	Album       string
	ISRC        string // International Standard Recording Code, if known
	ReleaseYear int
	DurationMs  int // Duration in milliseconds
}

// TrackFingerprint is a fingerprint associated with a stored track.
type TrackFingerprint struct {
	ID             uint64
	TrackID        string
	SequenceNumber int
	StartsAt       int // offset in samples at the fingerprinting sample rate
	Signature      fingerprint.Signature
}

// FromFingerprints associates pipeline output with a track.
func FromFingerprints(trackID string, fps []fingerprint.Fingerprint) []TrackFingerprint {
	out := make([]TrackFingerprint, len(fps))
	for i, fp := range fps {
		out[i] = TrackFingerprint{
			TrackID:        trackID,
			SequenceNumber: fp.SequenceNumber,
			StartsAt:       fp.StartsAt,
			Signature:      fp.Signature,
		}
	}
	return out
}

// Fingerprint strips the track association.
func (t TrackFingerprint) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.Fingerprint{
		Signature:      t.Signature,
		StartsAt:       t.StartsAt,
		SequenceNumber: t.SequenceNumber,
	}
}
