package spool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bft-labs/frameship/internal/ports"
)

func openTestSource(t *testing.T, dir string) *Source {
	t.Helper()
	s, err := Open(dir, Config{Debounce: 20 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSource_Backlog(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "002.jpg"), "two")
	mustWrite(t, filepath.Join(dir, "001.jpg"), "one")
	mustWrite(t, filepath.Join(dir, "notes.txt"), "ignored")
	mustWrite(t, filepath.Join(dir, ".hidden.jpg"), "ignored")

	s := openTestSource(t, dir)

	for _, want := range []string{"one", "two"} {
		got, err := s.TryGetFrame(context.Background(), time.Second)
		if err != nil {
			t.Fatalf("TryGetFrame() error = %v", err)
		}
		if string(got) != want {
			t.Errorf("TryGetFrame() = %q, want %q", got, want)
		}
	}

	if _, err := s.TryGetFrame(context.Background(), 50*time.Millisecond); !errors.Is(err, ports.ErrNoFrame) {
		t.Errorf("TryGetFrame() on empty spool = %v, want ErrNoFrame", err)
	}

	// Delivered files are removed; others stay.
	for _, name := range []string{"001.jpg", "002.jpg"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s still in spool", name)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Errorf("notes.txt removed: %v", err)
	}
}

func TestSource_WatchesNewFiles(t *testing.T) {
	dir := t.TempDir()
	s := openTestSource(t, dir)

	mustWrite(t, filepath.Join(dir, "frame_a.jpg"), "alpha")

	got, err := s.TryGetFrame(context.Background(), 5*time.Second)
	if err != nil {
		t.Fatalf("TryGetFrame() error = %v", err)
	}
	if string(got) != "alpha" {
		t.Errorf("TryGetFrame() = %q, want alpha", got)
	}
}

func TestSource_SkipsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.jpg"), "")
	mustWrite(t, filepath.Join(dir, "b.jpg"), "bravo")

	s := openTestSource(t, dir)

	got, err := s.TryGetFrame(context.Background(), time.Second)
	if err != nil || string(got) != "bravo" {
		t.Errorf("TryGetFrame() = %q, %v; want bravo", got, err)
	}
}

func TestSource_ContextCanceled(t *testing.T) {
	s := openTestSource(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.TryGetFrame(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("TryGetFrame() = %v, want context.Canceled", err)
	}
}

func TestSource_Close(t *testing.T) {
	s, err := Open(t.TempDir(), Config{}, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	// Second close is a no-op.
	if err := s.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}

	if _, err := s.TryGetFrame(context.Background(), time.Hour); !errors.Is(err, ErrClosed) {
		t.Errorf("TryGetFrame() after Close = %v, want ErrClosed", err)
	}
}

func TestOpen_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "spool", "in")
	s := openTestSource(t, dir)

	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Errorf("spool dir not created: %v", err)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", s.Pending())
	}
}
