package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestSplitArgs(t *testing.T) {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	title := fs.String("title", "", "")

	pos := splitArgs(fs, []string{"song.mp3", "--title", "Song"})
	if len(pos) != 1 || pos[0] != "song.mp3" {
		t.Errorf("positional %v", pos)
	}
	if *title != "Song" {
		t.Errorf("title %q", *title)
	}

	fs2 := flag.NewFlagSet("compare", flag.ContinueOnError)
	fs2.String("decoder-a", "", "")
	pos = splitArgs(fs2, []string{"--decoder-a", "riff", "a.wav", "b.wav"})
	if len(pos) != 2 || pos[0] != "a.wav" || pos[1] != "b.wav" {
		t.Errorf("positional %v", pos)
	}
}

func TestCollectAudioFiles(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.wav", "b.MP3", "notes.txt", filepath.Join("sub", "c.wav")} {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("1234"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, size, err := collectAudioFiles(root, []string{"wav", ".mp3", ""})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Errorf("found %d files: %v", len(files), files)
	}
	if size != 12 {
		t.Errorf("size %d, want 12", size)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(215500); got != "3:35" {
		t.Errorf("formatDuration = %q", got)
	}
}
