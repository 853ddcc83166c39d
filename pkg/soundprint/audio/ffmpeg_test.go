package audio

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestExtensionDecoderFor(t *testing.T) {
	d := ExtensionDecoder{TempDir: "/tmp"}
	tests := []struct {
		path string
		want Decoder
	}{
		{"a.wav", WavDecoder{}},
		{"b.WAVE", WavDecoder{}},
		{"c.mp3", MP3Decoder{}},
		{"d.flac", FFmpegDecoder{TempDir: "/tmp"}},
	}
	for _, tt := range tests {
		if got := d.For(tt.path); got != tt.want {
			t.Errorf("For(%q) = %#v, want %#v", tt.path, got, tt.want)
		}
	}
}

func TestDecoderByName(t *testing.T) {
	for _, name := range []string{"", "auto", "wav", "RIFF", "mp3", "ffmpeg"} {
		if _, err := DecoderByName(name, "/tmp"); err != nil {
			t.Errorf("DecoderByName(%q): %v", name, err)
		}
	}
	if _, err := DecoderByName("ogg", "/tmp"); err == nil {
		t.Error("expected error for unknown decoder")
	}
}

func TestFFmpegDecoder(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	data := make([]float64, 44100)
	for i := range data {
		data[i] = 0.1
	}
	src := filepath.Join(t.TempDir(), "in.wav")
	if err := WriteWav(src, data, 44100); err != nil {
		t.Fatal(err)
	}

	s, err := FFmpegDecoder{TempDir: t.TempDir()}.Decode(context.Background(), src, DefaultSampleRate)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if s.SampleRate != DefaultSampleRate {
		t.Errorf("rate %d", s.SampleRate)
	}
	if n := len(s.Data); n < DefaultSampleRate-10 || n > DefaultSampleRate+10 {
		t.Errorf("got %d samples for one second", n)
	}
}

func TestConvertedPathIsUnique(t *testing.T) {
	out := t.TempDir()
	a := convertedPath(filepath.Join("a", "song.mp3"), out, 5512)
	b := convertedPath(filepath.Join("b", "song.mp3"), out, 5512)
	if a == b {
		t.Fatalf("same output path %s for different inputs", a)
	}
	for _, p := range []string{a, b} {
		if filepath.Dir(p) != out || !strings.HasPrefix(filepath.Base(p), "song.5512.") || filepath.Ext(p) != ".wav" {
			t.Errorf("unexpected path %s", p)
		}
	}
}

func TestFFmpegDecoderConcurrentSameName(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	levels := []float64{0.1, -0.3}
	srcs := make([]string, len(levels))
	for i, lv := range levels {
		data := make([]float64, 22050)
		for j := range data {
			data[j] = lv
		}
		srcs[i] = filepath.Join(t.TempDir(), "song.wav")
		if err := WriteWav(srcs[i], data, 22050); err != nil {
			t.Fatal(err)
		}
	}

	dec := FFmpegDecoder{TempDir: t.TempDir()}
	results := make([]*Samples, len(srcs))
	errs := make([]error, len(srcs))
	var wg sync.WaitGroup
	for i, src := range srcs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = dec.Decode(context.Background(), src, DefaultSampleRate)
		}()
	}
	wg.Wait()

	for i := range srcs {
		if errs[i] != nil {
			t.Fatalf("decode %d: %v", i, errs[i])
		}
		mid := results[i].Data[len(results[i].Data)/2]
		if diff := mid - levels[i]; diff > 0.01 || diff < -0.01 {
			t.Errorf("decode %d read level %f, want %f", i, mid, levels[i])
		}
	}
}
