package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/bft-labs/frameship/internal/ports"
)

func TestCaptureSource_PumpDeliversFrames(t *testing.T) {
	s := NewCaptureSource(CaptureConfig{BufferFrames: 4}, nil)

	var stream bytes.Buffer
	for i := byte(0); i < 3; i++ {
		stream.Write(fakeJPEG(i))
	}
	go s.pump(&stream, nil)

	ctx := context.Background()
	for i := byte(0); i < 3; i++ {
		got, err := s.TryGetFrame(ctx, time.Second)
		if err != nil {
			t.Fatalf("TryGetFrame() #%d error = %v", i, err)
		}
		if !bytes.Equal(got, fakeJPEG(i)) {
			t.Errorf("frame %d = %x, want %x", i, got, fakeJPEG(i))
		}
	}

	if _, err := s.TryGetFrame(ctx, time.Second); !errors.Is(err, ErrStreamEnded) {
		t.Errorf("TryGetFrame() after end = %v, want ErrStreamEnded", err)
	}
}

func TestCaptureSource_DropsWhenBufferFull(t *testing.T) {
	s := NewCaptureSource(CaptureConfig{BufferFrames: 2}, nil)

	var stream bytes.Buffer
	for i := byte(0); i < 5; i++ {
		stream.Write(fakeJPEG(i))
	}
	s.pump(&stream, nil) // synchronous: nobody consumes meanwhile

	if s.Dropped() != 3 {
		t.Errorf("Dropped() = %d, want 3", s.Dropped())
	}

	// The oldest frames were kept; the newest were dropped.
	got, _ := s.TryGetFrame(context.Background(), time.Second)
	if !bytes.Equal(got, fakeJPEG(0)) {
		t.Errorf("first frame = %x, want frame 0", got)
	}
}

func TestCaptureSource_TimeoutAndCancel(t *testing.T) {
	s := NewCaptureSource(CaptureConfig{}, nil)

	if _, err := s.TryGetFrame(context.Background(), 10*time.Millisecond); !errors.Is(err, ports.ErrNoFrame) {
		t.Errorf("TryGetFrame() on idle source = %v, want ErrNoFrame", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.TryGetFrame(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("TryGetFrame() on canceled ctx = %v, want context.Canceled", err)
	}
}

func TestCaptureSource_StartRequiresInput(t *testing.T) {
	s := NewCaptureSource(CaptureConfig{}, nil)
	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() without input returned nil error")
	}
	// Close before Start is safe.
	if err := s.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestCaptureSource_StartWithFakeFFmpeg(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake ffmpeg requires a POSIX shell")
	}

	dir := t.TempDir()
	fixture := filepath.Join(dir, "stream.mjpeg")
	var stream bytes.Buffer
	stream.Write(fakeJPEG(1))
	stream.Write(fakeJPEG(2))
	if err := os.WriteFile(fixture, stream.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	bin := writeScript(t, dir, "#!/bin/sh\ncat '"+fixture+"'\n")

	s := NewCaptureSource(CaptureConfig{Binary: bin, Input: "/dev/video0"}, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Close()

	for i := byte(1); i <= 2; i++ {
		got, err := s.TryGetFrame(context.Background(), 5*time.Second)
		if err != nil {
			t.Fatalf("TryGetFrame() error = %v", err)
		}
		if !bytes.Equal(got, fakeJPEG(i)) {
			t.Errorf("frame = %x, want %x", got, fakeJPEG(i))
		}
	}
}

func TestCaptureSource_Args(t *testing.T) {
	s := NewCaptureSource(CaptureConfig{InputFormat: "v4l2", Input: "/dev/video0", FrameRate: 5}, nil)
	args := s.args()

	want := []string{"-hide_banner", "-loglevel", "error", "-f", "v4l2", "-i", "/dev/video0",
		"-r", "5", "-f", "image2pipe", "-c:v", "mjpeg", "-q:v", "3", "-"}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %s, want %s", i, args[i], want[i])
		}
	}
}
