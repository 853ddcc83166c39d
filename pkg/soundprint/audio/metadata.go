package audio

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const probeTimeout = 5 * time.Second

// Metadata is what ffprobe reports about a source file.
type Metadata struct {
	Filename   string
	Title      string
	Artist     string
	Album      string
	ISRC       string
	Year       int
	Duration   time.Duration
	SampleRate int
	Channels   int
	Format     string
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

type probeOutput struct {
	Format struct {
		Duration string            `json:"duration"`
		Format   string            `json:"format_name"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
	Streams []probeStream `json:"streams"`
}

// ReadMetadataFFmpeg runs ffprobe on path. Tag lookups are case-insensitive
// since containers disagree on key casing.
func ReadMetadataFFmpeg(ctx context.Context, path string) (*Metadata, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, probeTimeout)
		defer cancel()
	}

	out, err := exec.CommandContext(
		ctx,
		"ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	).Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return parseProbe(path, out)
}

func parseProbe(path string, raw []byte) (*Metadata, error) {
	var probe probeOutput
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}

	var stream *probeStream
	for i := range probe.Streams {
		if probe.Streams[i].CodecType == "audio" {
			stream = &probe.Streams[i]
			break
		}
	}
	if stream == nil {
		return nil, errors.New("no audio stream found")
	}

	tags := make(map[string]string, len(probe.Format.Tags))
	for k, v := range probe.Format.Tags {
		tags[strings.ToLower(k)] = strings.TrimSpace(v)
	}

	secs, _ := strconv.ParseFloat(probe.Format.Duration, 64)
	rate, _ := strconv.Atoi(stream.SampleRate)
	year, _ := strconv.Atoi(firstN(tags["date"], 4))

	return &Metadata{
		Filename:   filepath.Base(path),
		Title:      tags["title"],
		Artist:     tags["artist"],
		Album:      tags["album"],
		ISRC:       tags["isrc"],
		Year:       year,
		Duration:   time.Duration(secs * float64(time.Second)),
		SampleRate: rate,
		Channels:   stream.Channels,
		Format:     probe.Format.Format,
	}, nil
}

func firstN(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
