package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/himanishpuri/SoundPrint/pkg/utils"
)

const convertTimeout = 2 * time.Minute

type ConvertWAVConfig struct {
	SampleRate int // e.g. 5512, 11025, 44100
}

// convertedPath names the WAV written for inputPath. The random suffix keeps
// concurrent conversions of same-named files from sharing an output.
func convertedPath(inputPath, outputDir string, sampleRate int) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(outputDir, base+"."+strconv.Itoa(sampleRate)+"."+uuid.NewString()+".wav")
}

// ConvertToMonoWAV asks ffmpeg to downmix and resample inputPath into a
// 16-bit mono PCM WAV inside outputDir, named after the input file.
func ConvertToMonoWAV(
	ctx context.Context,
	inputPath string,
	outputDir string,
	cfg ConvertWAVConfig,
) (string, error) {

	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, convertTimeout)
		defer cancel()
	}

	if err := utils.MakeDir(outputDir); err != nil {
		return "", err
	}

	outputPath := convertedPath(inputPath, outputDir, cfg.SampleRate)
	tmpPath := outputPath + ".tmp.wav"
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(
		ctx,
		"ffmpeg",
		"-y",
		"-v", "quiet",
		"-i", inputPath,
		"-ac", "1",
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-c:a", "pcm_s16le",
		tmpPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg failed: %v (%s)", err, out)
	}

	if err := utils.MoveFile(tmpPath, outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

// FFmpegDecoder resamples any ffmpeg-readable source into a temporary WAV
// and reads it back with the RIFF reader.
type FFmpegDecoder struct {
	TempDir string
	// Keep leaves the converted WAV on disk.
	Keep bool
}

func (d FFmpegDecoder) Decode(ctx context.Context, path string, sampleRate int) (*Samples, error) {
	dir := d.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	wavPath, err := ConvertToMonoWAV(ctx, path, dir, ConvertWAVConfig{SampleRate: sampleRate})
	if err != nil {
		return nil, fmt.Errorf("audio conversion failed: %w", err)
	}
	if !d.Keep {
		defer os.Remove(wavPath)
	}

	mono, rate, err := ReadWavFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read converted WAV: %w", err)
	}
	return toSamples(mono, rate, sampleRate, path)
}

// ExtensionDecoder picks a native decoder by file extension and falls back
// to ffmpeg for everything else.
type ExtensionDecoder struct {
	TempDir string
}

func (d ExtensionDecoder) Decode(ctx context.Context, path string, sampleRate int) (*Samples, error) {
	return d.For(path).Decode(ctx, path, sampleRate)
}

// For returns the decoder that would handle path.
func (d ExtensionDecoder) For(path string) Decoder {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return WavDecoder{}
	case ".mp3":
		return MP3Decoder{}
	default:
		return FFmpegDecoder{TempDir: d.TempDir}
	}
}

// DecoderByName resolves the decoder names accepted on the command line.
func DecoderByName(name, tempDir string) (Decoder, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return ExtensionDecoder{TempDir: tempDir}, nil
	case "wav":
		return WavDecoder{}, nil
	case "riff":
		return RIFFDecoder{}, nil
	case "mp3":
		return MP3Decoder{}, nil
	case "ffmpeg":
		return FFmpegDecoder{TempDir: tempDir}, nil
	default:
		return nil, fmt.Errorf("unknown decoder %q (want auto, wav, riff, mp3 or ffmpeg)", name)
	}
}
