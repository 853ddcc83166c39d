package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.wav")
	dst := filepath.Join(dir, "nested", "b.wav")

	if err := os.WriteFile(src, []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := MakeDir(filepath.Dir(dst)); err != nil {
		t.Fatalf("MakeDir: %v", err)
	}
	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}

	if FileExists(src) {
		t.Error("source still exists after move")
	}
	if !FileExists(dst) {
		t.Error("destination missing after move")
	}
}

func TestMoveFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := MoveFile(filepath.Join(dir, "nope"), filepath.Join(dir, "x")); err == nil {
		t.Error("expected error moving a missing file")
	}
}

func TestFileExistsDirectory(t *testing.T) {
	if FileExists(t.TempDir()) {
		t.Error("directories should not count as files")
	}
}
