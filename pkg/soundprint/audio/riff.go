package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// WavFormat is the decoded body of a RIFF "fmt " chunk.
type WavFormat struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

type wavData struct {
	Format WavFormat
	Data   []byte
}

const pcmFormat = 1

// readRIFFHeader validates the 12 byte RIFF/WAVE preamble.
func readRIFFHeader(r io.Reader) error {
	var hdr struct {
		RIFF [4]byte
		Size uint32
		WAVE [4]byte
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("reading RIFF header: %w", err)
	}
	if string(hdr.RIFF[:]) != "RIFF" || string(hdr.WAVE[:]) != "WAVE" {
		return errors.New("not a WAV/RIFF file")
	}
	return nil
}

func readFmtChunk(r io.ReadSeeker, size uint32) (WavFormat, error) {
	var f WavFormat
	if size < 16 {
		return f, fmt.Errorf("fmt chunk too small: %d bytes", size)
	}
	if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
		return f, fmt.Errorf("reading fmt chunk: %w", err)
	}
	if extra := int64(size) - 16; extra > 0 {
		if _, err := r.Seek(extra, io.SeekCurrent); err != nil {
			return f, fmt.Errorf("seeking past fmt extras: %w", err)
		}
	}
	return f, nil
}

// scanChunks walks the chunk list until both "fmt " and "data" are found.
// Unknown chunks (LIST, fact, junk) are skipped, honouring the pad byte.
func scanChunks(r io.ReadSeeker) (*wavData, error) {
	var (
		out      wavData
		haveFmt  bool
		haveData bool
	)

	for !(haveFmt && haveData) {
		var hdr struct {
			ID   [4]byte
			Size uint32
		}
		if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("reading chunk header: %w", err)
		}

		switch id := string(hdr.ID[:]); id {
		case "fmt ":
			f, err := readFmtChunk(r, hdr.Size)
			if err != nil {
				return nil, err
			}
			out.Format = f
			haveFmt = true
		case "data":
			buf := make([]byte, hdr.Size)
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("reading data chunk: %w", err)
			}
			out.Data = buf
			haveData = true
		default:
			if _, err := r.Seek(int64(hdr.Size), io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("skipping chunk %q: %w", id, err)
			}
		}

		if hdr.Size%2 == 1 {
			if _, err := r.Seek(1, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("seeking pad byte: %w", err)
			}
		}
	}

	if !haveFmt {
		return nil, errors.New("fmt chunk not found")
	}
	if !haveData {
		return nil, errors.New("data chunk not found")
	}
	return &out, nil
}

func int16Samples(data []byte) ([]int16, error) {
	buf := make([]int16, len(data)/2)
	if err := binary.Read(bytes.NewReader(data[:len(buf)*2]), binary.LittleEndian, buf); err != nil {
		return nil, fmt.Errorf("decoding PCM samples: %w", err)
	}
	return buf, nil
}

// ReadWav decodes a 16-bit PCM WAV stream into mono samples in [-1, 1]
// and returns them with the stream's native sample rate. It does not assume
// the canonical 44 byte header layout.
func ReadWav(r io.ReadSeeker) ([]float64, int, error) {
	if err := readRIFFHeader(r); err != nil {
		return nil, 0, err
	}
	wd, err := scanChunks(r)
	if err != nil {
		return nil, 0, err
	}
	if wd.Format.AudioFormat != pcmFormat {
		return nil, 0, errors.New("unsupported WAV audio format: only PCM (1) supported")
	}
	if wd.Format.BitsPerSample != 16 {
		return nil, 0, errors.New("unsupported bits per sample: only 16-bit supported")
	}
	if wd.Format.NumChannels == 0 {
		return nil, 0, errors.New("WAV declares zero channels")
	}

	pcm, err := int16Samples(wd.Data)
	if err != nil {
		return nil, 0, err
	}
	const scale = 1.0 / 32768.0
	interleaved := make([]float64, len(pcm))
	for i, s := range pcm {
		interleaved[i] = float64(s) * scale
	}
	mono, err := Downmix(interleaved, int(wd.Format.NumChannels))
	if err != nil {
		return nil, 0, err
	}
	return mono, int(wd.Format.SampleRate), nil
}

// ReadWavFile is ReadWav over a file path.
func ReadWavFile(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return ReadWav(f)
}

// RIFFDecoder reads 16-bit PCM WAV files with the built-in chunk scanner.
type RIFFDecoder struct{}

func (RIFFDecoder) Decode(ctx context.Context, path string, sampleRate int) (*Samples, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mono, rate, err := ReadWavFile(path)
	if err != nil {
		return nil, fmt.Errorf("riff decode %s: %w", path, err)
	}
	return toSamples(mono, rate, sampleRate, path)
}
