package audio

import (
	"testing"
	"time"
)

func TestParseProbe(t *testing.T) {
	raw := []byte(`{
		"streams": [
			{"codec_type": "video"},
			{"codec_type": "audio", "sample_rate": "44100", "channels": 2}
		],
		"format": {
			"format_name": "mp3",
			"duration": "215.500000",
			"tags": {"TITLE": " Sandstorm ", "Artist": "Darude", "album": "Before the Storm", "date": "1999-11-01", "TSRC": "x", "isrc": "FIWMA9900012"}
		}
	}`)

	meta, err := parseProbe("/music/sandstorm.mp3", raw)
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}
	if meta.Title != "Sandstorm" || meta.Artist != "Darude" || meta.Album != "Before the Storm" {
		t.Errorf("unexpected tags %+v", meta)
	}
	if meta.Year != 1999 {
		t.Errorf("year %d, want 1999", meta.Year)
	}
	if meta.ISRC != "FIWMA9900012" {
		t.Errorf("isrc %q", meta.ISRC)
	}
	if meta.Duration != 215500*time.Millisecond {
		t.Errorf("duration %v", meta.Duration)
	}
	if meta.SampleRate != 44100 || meta.Channels != 2 {
		t.Errorf("stream %d Hz x%d", meta.SampleRate, meta.Channels)
	}
	if meta.Filename != "sandstorm.mp3" || meta.Format != "mp3" {
		t.Errorf("file info %q %q", meta.Filename, meta.Format)
	}
}

func TestParseProbeNoAudio(t *testing.T) {
	if _, err := parseProbe("x", []byte(`{"streams": [{"codec_type": "video"}]}`)); err == nil {
		t.Error("expected error without an audio stream")
	}
	if _, err := parseProbe("x", []byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
