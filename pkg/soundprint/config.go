package soundprint

import (
	"github.com/himanishpuri/SoundPrint/pkg/soundprint/audio"
	"github.com/himanishpuri/SoundPrint/pkg/soundprint/fingerprint"
)

type Config struct {
	DBPath        string
	TempDir       string
	Workers       int
	ProbeMetadata bool
	Logger        Logger
	Storage       Storage
	Decoder       audio.Decoder
	Fingerprint   fingerprint.Configuration
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

// WithWorkers sets the fingerprinting worker count; 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

// WithMetadataProbe toggles filling missing track tags from ffprobe.
func WithMetadataProbe(enabled bool) Option {
	return func(c *Config) {
		c.ProbeMetadata = enabled
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func WithDecoder(dec audio.Decoder) Option {
	return func(c *Config) {
		c.Decoder = dec
	}
}

func WithFingerprintConfig(cfg fingerprint.Configuration) Option {
	return func(c *Config) {
		c.Fingerprint = cfg
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:        "soundprint.sqlite3",
		TempDir:       "/tmp",
		ProbeMetadata: true,
		Fingerprint:   fingerprint.DefaultConfiguration(),
	}
}
