package audio

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WavDecoder decodes integer PCM WAV files (8, 16, 24 or 32 bit) using
// go-audio/wav.
type WavDecoder struct{}

func (WavDecoder) Decode(ctx context.Context, path string, sampleRate int) (*Samples, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading PCM from %s: %w", path, err)
	}

	mono, err := intBufferToMono(buf, int(dec.BitDepth))
	if err != nil {
		return nil, fmt.Errorf("wav decode %s: %w", path, err)
	}
	return toSamples(mono, int(dec.SampleRate), sampleRate, path)
}

func intBufferToMono(buf *audio.IntBuffer, bitDepth int) ([]float64, error) {
	if buf == nil || buf.Format == nil {
		return nil, errors.New("missing PCM format")
	}
	if bitDepth <= 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	// 8-bit WAV is unsigned
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}
	interleaved := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		interleaved[i] = float64(v-offset) * scale
	}
	return Downmix(interleaved, buf.Format.NumChannels)
}

// WriteWav encodes mono samples in [-1, 1] as 16-bit PCM. Values outside
// the range are clipped.
func WriteWav(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		v := int(s * 32767)
		switch {
		case v > 32767:
			v = 32767
		case v < -32768:
			v = -32768
		}
		data[i] = v
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("writing PCM: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalizing WAV: %w", err)
	}
	return f.Close()
}
