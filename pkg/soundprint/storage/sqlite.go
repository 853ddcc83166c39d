package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/himanishpuri/SoundPrint/pkg/models"
	"github.com/himanishpuri/SoundPrint/pkg/soundprint/fingerprint"
)

const DefaultDBFile = "soundprint.sqlite3"
const errDBClientNil = "db client is nil"

var ErrTrackNotFound = errors.New("track not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Track struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Title       string `gorm:"uniqueIndex:idx_track_unique,priority:1;index:idx_track_meta,priority:1" json:"title"`
	Artist      string `gorm:"uniqueIndex:idx_track_unique,priority:2;index:idx_track_meta,priority:2" json:"artist"`
	Album       string `json:"album"`
	ISRC        string `gorm:"index:idx_isrc" json:"isrc"`
	ReleaseYear int    `json:"release_year"`
	DurationMs  int    `json:"duration_ms"`
	CreatedAt   time.Time
}

type Fingerprint struct {
	ID              uint64 `gorm:"primaryKey;autoIncrement"`
	TrackID         string `gorm:"type:varchar(36);uniqueIndex:idx_track_seq,priority:1" json:"track_id"`
	SequenceNumber  int    `gorm:"uniqueIndex:idx_track_seq,priority:2" json:"sequence_number"`
	StartsAt        int    `json:"starts_at"`
	Signature       []byte `gorm:"type:blob" json:"signature"`
	SignatureLength int    `json:"signature_length"`
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("SOUNDPRINT_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Track{}, &Fingerprint{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *DBClient) ready() error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// InsertTrack registers a track and returns its ID. A track with the same
// title and artist is reused; its empty metadata fields are filled in.
func (c *DBClient) InsertTrack(t models.Track) (string, error) {
	id, _, err := c.RegisterTrack(t)
	return id, err
}

// RegisterTrack is InsertTrack that also reports whether this call created
// the row.
func (c *DBClient) RegisterTrack(t models.Track) (string, bool, error) {
	if err := c.ready(); err != nil {
		return "", false, err
	}

	var row Track
	err := c.DB.Where("title = ? AND artist = ?", t.Title, t.Artist).First(&row).Error
	if err == nil {
		updates := map[string]any{}
		if row.Album == "" && t.Album != "" {
			updates["album"] = t.Album
		}
		if row.ISRC == "" && t.ISRC != "" {
			updates["isrc"] = t.ISRC
		}
		if row.ReleaseYear == 0 && t.ReleaseYear != 0 {
			updates["release_year"] = t.ReleaseYear
		}
		if row.DurationMs == 0 && t.DurationMs != 0 {
			updates["duration_ms"] = t.DurationMs
		}
		if len(updates) > 0 {
			if err := c.DB.Model(&row).Updates(updates).Error; err != nil {
				return "", false, fmt.Errorf("updating track metadata: %w", err)
			}
		}
		return row.ID, false, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, fmt.Errorf("querying existing track: %w", err)
	}

	row = Track{
		ID:          uuid.NewString(),
		Title:       t.Title,
		Artist:      t.Artist,
		Album:       t.Album,
		ISRC:        t.ISRC,
		ReleaseYear: t.ReleaseYear,
		DurationMs:  t.DurationMs,
	}
	if err := c.DB.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			if fetchErr := c.DB.Where("title = ? AND artist = ?", t.Title, t.Artist).First(&row).Error; fetchErr != nil {
				return "", false, fmt.Errorf("fetching track after constraint violation: %w", fetchErr)
			}
			return row.ID, false, nil
		}
		return "", false, fmt.Errorf("creating track: %w", err)
	}

	return row.ID, true, nil
}

func (c *DBClient) GetTrackByID(id string) (*models.Track, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var row Track
	if err := c.DB.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTrackNotFound, id)
		}
		return nil, fmt.Errorf("querying track: %w", err)
	}
	t := row.toModel()
	return &t, nil
}

func (c *DBClient) ListTracks() ([]models.Track, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var rows []Track
	if err := c.DB.Order("artist, title").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing tracks: %w", err)
	}
	out := make([]models.Track, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

func (r Track) toModel() models.Track {
	return models.Track{
		ID:          r.ID,
		Title:       r.Title,
		Artist:      r.Artist,
		Album:       r.Album,
		ISRC:        r.ISRC,
		ReleaseYear: r.ReleaseYear,
		DurationMs:  r.DurationMs,
	}
}

// InsertFingerprints stores fingerprints in one transaction. Storing the
// same sequence number twice for a track fails.
func (c *DBClient) InsertFingerprints(fps []models.TrackFingerprint) error {
	if err := c.ready(); err != nil {
		return err
	}
	if len(fps) == 0 {
		return nil
	}

	rows := make([]Fingerprint, len(fps))
	for i, fp := range fps {
		if fp.TrackID == "" {
			return fmt.Errorf("fingerprint %d has no track id", fp.SequenceNumber)
		}
		rows[i] = Fingerprint{
			TrackID:         fp.TrackID,
			SequenceNumber:  fp.SequenceNumber,
			StartsAt:        fp.StartsAt,
			Signature:       fp.Signature.Pack(),
			SignatureLength: len(fp.Signature),
		}
	}

	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("batch insert fingerprints: %w", err)
		}
		return nil
	})
}

// ReadFingerprintsByTrackID returns a track's fingerprints ordered by
// sequence number.
func (c *DBClient) ReadFingerprintsByTrackID(trackID string) ([]models.TrackFingerprint, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var rows []Fingerprint
	if err := c.DB.Where("track_id = ?", trackID).Order("sequence_number").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying fingerprints: %w", err)
	}

	out := make([]models.TrackFingerprint, 0, len(rows))
	for _, r := range rows {
		sig, err := fingerprint.UnpackSignature(r.Signature, r.SignatureLength)
		if err != nil {
			return nil, fmt.Errorf("fingerprint %d: %w", r.ID, err)
		}
		out = append(out, models.TrackFingerprint{
			ID:             r.ID,
			TrackID:        r.TrackID,
			SequenceNumber: r.SequenceNumber,
			StartsAt:       r.StartsAt,
			Signature:      sig,
		})
	}
	return out, nil
}

func (c *DBClient) GetFingerprintCount(trackID string) (int64, error) {
	if err := c.ready(); err != nil {
		return 0, err
	}
	var n int64
	q := c.DB.Model(&Fingerprint{})
	if trackID != "" {
		q = q.Where("track_id = ?", trackID)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting fingerprints: %w", err)
	}
	return n, nil
}

// DeleteTrackByID removes a track and its fingerprints.
func (c *DBClient) DeleteTrackByID(trackID string) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("track_id = ?", trackID).Delete(&Fingerprint{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", trackID).Delete(&Track{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrTrackNotFound, trackID)
		}
		return nil
	})
}
