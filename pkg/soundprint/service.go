package soundprint

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/himanishpuri/SoundPrint/pkg/logger"
	"github.com/himanishpuri/SoundPrint/pkg/models"
	"github.com/himanishpuri/SoundPrint/pkg/soundprint/audio"
	"github.com/himanishpuri/SoundPrint/pkg/soundprint/fingerprint"
	"github.com/himanishpuri/SoundPrint/pkg/utils"
)

const unknownArtist = "Unknown Artist"

// soundprintService is the default implementation of the Service interface.
type soundprintService struct {
	storage Storage
	log     Logger
	config  *Config
	fp      *fingerprint.Service
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Fingerprint.Validate(); err != nil {
		return nil, err
	}

	// Set default logger if none provided
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if cfg.Decoder == nil {
		cfg.Decoder = audio.ExtensionDecoder{TempDir: cfg.TempDir}
	}

	stor := cfg.Storage
	if stor == nil {
		var err error
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &soundprintService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
		fp:      fingerprint.NewService(fingerprint.WithWorkers(cfg.Workers)),
	}, nil
}

// FingerprintFile decodes path and returns its fingerprints in sequence order.
func (s *soundprintService) FingerprintFile(ctx context.Context, path string) (*FileFingerprints, error) {
	return s.fingerprintWith(ctx, s.config.Decoder, path)
}

func (s *soundprintService) fingerprintWith(ctx context.Context, dec audio.Decoder, path string) (*FileFingerprints, error) {
	cfg := s.config.Fingerprint
	if !utils.FileExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	samples, err := dec.Decode(ctx, path, cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	s.log.Debugf("Decoded %s: %d samples at %d Hz", path, len(samples.Data), samples.SampleRate)

	images, err := s.fp.CreateSpectralImages(samples, cfg)
	if err != nil {
		return nil, fmt.Errorf("fingerprinting %s: %w", path, err)
	}
	fps, err := s.fp.FingerprintImages(images, cfg)
	if err != nil {
		return nil, fmt.Errorf("fingerprinting %s: %w", path, err)
	}
	fingerprint.SortBySequence(fps)

	s.log.Infof("Generated %d fingerprints from %d spectral images (%s)", len(fps), len(images), filepath.Base(path))
	return &FileFingerprints{
		Path:         path,
		Duration:     samples.Duration(),
		SampleRate:   samples.SampleRate,
		Images:       len(images),
		Fingerprints: fps,
	}, nil
}

// AddTrack fingerprints the file at path and stores it under track. Empty
// title or artist are taken from the file's tags when available.
func (s *soundprintService) AddTrack(ctx context.Context, path string, track models.Track) (string, error) {
	track = s.completeMetadata(ctx, path, track)
	s.log.Infof("Processing track: %s by %s", track.Title, track.Artist)

	ff, err := s.FingerprintFile(ctx, path)
	if err != nil {
		return "", err
	}
	if len(ff.Fingerprints) == 0 {
		return "", fmt.Errorf("%w: %s is silent or shorter than one image", ErrNoFingerprints, path)
	}
	if track.DurationMs == 0 {
		track.DurationMs = int(ff.Duration.Milliseconds())
	}

	trackID, created, err := s.storage.InsertTrack(track)
	if err != nil {
		return "", fmt.Errorf("failed to register track: %w", err)
	}

	existing, err := s.storage.GetFingerprintCount(trackID)
	if err != nil {
		return "", fmt.Errorf("failed to count fingerprints: %w", err)
	}
	if existing > 0 {
		s.log.Warnf("Track %s already has %d fingerprints, skipping", trackID, existing)
		return trackID, nil
	}

	if err := s.storage.InsertFingerprints(models.FromFingerprints(trackID, ff.Fingerprints)); err != nil {
		if created {
			if delErr := s.storage.DeleteTrackByID(trackID); delErr != nil { // rollback
				s.log.Errorf("Rollback of track %s failed: %v", trackID, delErr)
			}
		}
		return "", fmt.Errorf("failed to store fingerprints: %w", err)
	}

	s.log.Infof("Successfully added track ID=%s", trackID)
	return trackID, nil
}

func (s *soundprintService) completeMetadata(ctx context.Context, path string, track models.Track) models.Track {
	if s.config.ProbeMetadata && (track.Title == "" || track.Artist == "") {
		meta, err := audio.ReadMetadataFFmpeg(ctx, path)
		if err != nil {
			s.log.Warnf("Could not read tags from %s: %v", path, err)
		} else {
			track = mergeMetadata(track, meta)
		}
	}

	if track.Title == "" {
		track.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if track.Artist == "" {
		track.Artist = unknownArtist
	}
	return track
}

func mergeMetadata(track models.Track, meta *audio.Metadata) models.Track {
	if track.Title == "" {
		track.Title = meta.Title
	}
	if track.Artist == "" {
		track.Artist = meta.Artist
	}
	if track.Album == "" {
		track.Album = meta.Album
	}
	if track.ISRC == "" {
		track.ISRC = meta.ISRC
	}
	if track.ReleaseYear == 0 {
		track.ReleaseYear = meta.Year
	}
	if track.DurationMs == 0 {
		track.DurationMs = int(meta.Duration.Milliseconds())
	}
	return track
}

// CompareFiles fingerprints two files and counts differing bits. The
// optional decoders override the configured one for A and B respectively.
func (s *soundprintService) CompareFiles(ctx context.Context, pathA, pathB string, decoders ...audio.Decoder) (*CompareResult, error) {
	decA, decB := s.config.Decoder, s.config.Decoder
	if len(decoders) > 0 && decoders[0] != nil {
		decA, decB = decoders[0], decoders[0]
	}
	if len(decoders) > 1 && decoders[1] != nil {
		decB = decoders[1]
	}

	a, err := s.fingerprintWith(ctx, decA, pathA)
	if err != nil {
		return nil, err
	}
	b, err := s.fingerprintWith(ctx, decB, pathB)
	if err != nil {
		return nil, err
	}

	cmp, err := fingerprint.Compare(a.Fingerprints, b.Fingerprints)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Compared %d fingerprint pairs: %d/%d bits differ", cmp.Compared, cmp.DiffBits, cmp.TotalBits)
	return &CompareResult{A: a, B: b, Comparison: cmp}, nil
}

// GetTrackByID retrieves a track's metadata by its database ID.
func (s *soundprintService) GetTrackByID(trackID string) (*models.Track, error) {
	return s.storage.GetTrackByID(trackID)
}

// ListTracks returns all tracks in the database.
func (s *soundprintService) ListTracks() ([]models.Track, error) {
	return s.storage.ListTracks()
}

func (s *soundprintService) ReadFingerprints(trackID string) ([]models.TrackFingerprint, error) {
	if _, err := s.storage.GetTrackByID(trackID); err != nil {
		return nil, err
	}
	return s.storage.ReadFingerprintsByTrackID(trackID)
}

func (s *soundprintService) FingerprintCount(trackID string) (int64, error) {
	return s.storage.GetFingerprintCount(trackID)
}

// DeleteTrack removes a track and all its fingerprints from the database.
func (s *soundprintService) DeleteTrack(trackID string) error {
	if trackID == "" {
		return errors.New("track id is required")
	}
	return s.storage.DeleteTrackByID(trackID)
}

// Close releases all resources held by the service.
func (s *soundprintService) Close() error {
	return s.storage.Close()
}
