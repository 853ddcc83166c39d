package soundprint

import (
	"github.com/himanishpuri/SoundPrint/pkg/models"
	"github.com/himanishpuri/SoundPrint/pkg/soundprint/storage"
)

// storageAdapter adapts the storage.DBClient to implement the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) InsertTrack(track models.Track) (string, bool, error) {
	return s.db.RegisterTrack(track)
}

func (s *storageAdapter) InsertFingerprints(fps []models.TrackFingerprint) error {
	return s.db.InsertFingerprints(fps)
}

func (s *storageAdapter) ReadFingerprintsByTrackID(trackID string) ([]models.TrackFingerprint, error) {
	return s.db.ReadFingerprintsByTrackID(trackID)
}

func (s *storageAdapter) GetTrackByID(trackID string) (*models.Track, error) {
	return s.db.GetTrackByID(trackID)
}

func (s *storageAdapter) ListTracks() ([]models.Track, error) {
	return s.db.ListTracks()
}

func (s *storageAdapter) GetFingerprintCount(trackID string) (int64, error) {
	return s.db.GetFingerprintCount(trackID)
}

func (s *storageAdapter) DeleteTrackByID(trackID string) error {
	return s.db.DeleteTrackByID(trackID)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}
