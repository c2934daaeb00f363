package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCappedFileWriterRollsOver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	w, err := newCappedFileWriter(path, 1)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	w.cap = 64

	line := []byte(strings.Repeat("x", 30) + "\n")
	for i := 0; i < 3; i++ {
		if _, err := w.Write(line); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Two lines fit under the cap; the third forced a rollover.
	rolled, err := os.ReadFile(path + ".old")
	if err != nil {
		t.Fatalf("read rolled file: %v", err)
	}
	if len(rolled) != 2*len(line) {
		t.Fatalf("rolled file = %d bytes, want %d", len(rolled), 2*len(line))
	}
	cur, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read current file: %v", err)
	}
	if len(cur) != len(line) {
		t.Fatalf("current file = %d bytes, want %d", len(cur), len(line))
	}
}

func TestCappedFileWriterReopensAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	w, err := newCappedFileWriter(path, 1)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if _, err := w.Write([]byte("first\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := w.Write([]byte("second\n")); err != nil {
		t.Fatalf("write after close: %v", err)
	}
	_ = w.Close()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "first\nsecond\n" {
		t.Fatalf("content = %q, want both lines appended", b)
	}
}
