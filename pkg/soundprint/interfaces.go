package soundprint

import (
	"context"

	"github.com/himanishpuri/SoundPrint/pkg/models"
	"github.com/himanishpuri/SoundPrint/pkg/soundprint/audio"
)

type Service interface {
	FingerprintFile(ctx context.Context, path string) (*FileFingerprints, error)
	AddTrack(ctx context.Context, path string, track models.Track) (string, error)
	CompareFiles(ctx context.Context, pathA, pathB string, decoders ...audio.Decoder) (*CompareResult, error)
	GetTrackByID(trackID string) (*models.Track, error)
	ListTracks() ([]models.Track, error)
	ReadFingerprints(trackID string) ([]models.TrackFingerprint, error)
	FingerprintCount(trackID string) (int64, error)
	DeleteTrack(trackID string) error
	Close() error
}

type Storage interface {
	// InsertTrack returns the track ID and whether the track was new.
	InsertTrack(track models.Track) (id string, created bool, err error)
	InsertFingerprints(fps []models.TrackFingerprint) error
	ReadFingerprintsByTrackID(trackID string) ([]models.TrackFingerprint, error)
	GetTrackByID(trackID string) (*models.Track, error)
	ListTracks() ([]models.Track, error)
	GetFingerprintCount(trackID string) (int64, error)
	DeleteTrackByID(trackID string) error
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
