package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// MP3Decoder decodes MPEG-1/2 layer III files in pure Go. go-mp3 always
// produces 16-bit little-endian stereo frames.
type MP3Decoder struct{}

func (MP3Decoder) Decode(ctx context.Context, path string, sampleRate int) (*Samples, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode %s: %w", path, err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3 read %s: %w", path, err)
	}

	const bytesPerFrame = 4
	raw = raw[:len(raw)-len(raw)%bytesPerFrame]
	interleaved := make([]float64, len(raw)/2)
	for i := range interleaved {
		interleaved[i] = float64(int16(binary.LittleEndian.Uint16(raw[2*i:]))) / 32768.0
	}

	mono, err := Downmix(interleaved, 2)
	if err != nil {
		return nil, err
	}
	return toSamples(mono, dec.SampleRate(), sampleRate, path)
}
