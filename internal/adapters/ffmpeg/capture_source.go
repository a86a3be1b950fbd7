package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/frameship/internal/ports"
	"github.com/bft-labs/frameship/pkg/log"
)

// ErrStreamEnded is returned once the capture process has exited and all
// buffered frames were consumed.
var ErrStreamEnded = errors.New("capture stream ended")

// CaptureConfig describes the ffmpeg capture process.
type CaptureConfig struct {
	// Binary is the ffmpeg executable. Default: "ffmpeg"
	Binary string

	// InputFormat is passed to -f before the input, e.g. "v4l2",
	// "avfoundation", "dshow". Empty lets ffmpeg probe.
	InputFormat string

	// Input is the device or URL, e.g. "/dev/video0" or an RTSP URL.
	Input string

	// FrameRate is the output rate in frames per second. Default: 10
	FrameRate int

	// Quality is the MJPEG -q:v value (2 best .. 31 worst). Default: 3
	Quality int

	// BufferFrames bounds decoded frames waiting for the pipeline.
	// When full, new frames are dropped. Default: 8
	BufferFrames int

	// MaxFrameBytes discards larger images. Default: 16 MiB
	MaxFrameBytes int
}

func (c *CaptureConfig) setDefaults() {
	if c.Binary == "" {
		c.Binary = "ffmpeg"
	}
	if c.FrameRate <= 0 {
		c.FrameRate = 10
	}
	if c.Quality <= 0 {
		c.Quality = 3
	}
	if c.BufferFrames <= 0 {
		c.BufferFrames = 8
	}
	if c.MaxFrameBytes <= 0 {
		c.MaxFrameBytes = 16 << 20
	}
}

// CaptureSource implements ports.FrameSource on top of an ffmpeg process
// emitting MJPEG to stdout.
type CaptureSource struct {
	config CaptureConfig
	logger log.Logger

	frames chan []byte
	done   chan struct{}

	mu     sync.Mutex
	err    error
	cmd    *exec.Cmd
	cancel context.CancelFunc
	stderr bytes.Buffer

	dropped   atomic.Uint64
	closeOnce sync.Once
}

// NewCaptureSource creates a source. Call Start to launch ffmpeg.
func NewCaptureSource(config CaptureConfig, logger log.Logger) *CaptureSource {
	config.setDefaults()
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &CaptureSource{
		config: config,
		logger: logger,
		frames: make(chan []byte, config.BufferFrames),
		done:   make(chan struct{}),
	}
}

// Start launches the capture process. The process lives until Close or
// until ctx is canceled.
func (s *CaptureSource) Start(ctx context.Context) error {
	if s.config.Input == "" {
		return errors.New("capture input is required")
	}

	procCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(procCtx, s.config.Binary, s.args()...)
	cmd.Stderr = &lockedWriter{mu: &s.mu, w: &s.stderr}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.cancel = cancel
	s.mu.Unlock()

	s.logger.Info("capture process started",
		log.String("input", s.config.Input),
		log.Int("fps", s.config.FrameRate),
	)

	go s.pump(stdout, cmd.Wait)
	return nil
}

func (s *CaptureSource) args() []string {
	args := []string{"-hide_banner", "-loglevel", "error"}
	if s.config.InputFormat != "" {
		args = append(args, "-f", s.config.InputFormat)
	}
	return append(args,
		"-i", s.config.Input,
		"-r", strconv.Itoa(s.config.FrameRate),
		"-f", "image2pipe",
		"-c:v", "mjpeg",
		"-q:v", strconv.Itoa(s.config.Quality),
		"-",
	)
}

// pump splits r into frames until it ends, then records why.
// wait, if non-nil, reaps the producing process.
func (s *CaptureSource) pump(r io.Reader, wait func() error) {
	defer close(s.done)

	mr := newMJPEGReader(r, s.config.MaxFrameBytes)
	var streamErr error
	for {
		frame, err := mr.Next()
		if errors.Is(err, errFrameTooLarge) {
			s.logger.Warn("discarding oversized frame", log.Int("limit", s.config.MaxFrameBytes))
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				streamErr = err
			}
			break
		}

		select {
		case s.frames <- frame:
		default:
			s.dropped.Add(1)
		}
	}

	if wait != nil {
		if err := wait(); err != nil && streamErr == nil {
			streamErr = err
		}
	}

	s.mu.Lock()
	if streamErr != nil {
		s.err = fmt.Errorf("%w: %v %s", ErrStreamEnded, streamErr, tail(s.stderr.String(), 256))
	} else {
		s.err = ErrStreamEnded
	}
	s.mu.Unlock()
}

// TryGetFrame returns the next buffered frame, waiting up to timeout.
func (s *CaptureSource) TryGetFrame(ctx context.Context, timeout time.Duration) ([]byte, error) {
	select {
	case f := <-s.frames:
		return f, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case f := <-s.frames:
		return f, nil
	case <-s.done:
		// Frames buffered before the process exited are still delivered.
		select {
		case f := <-s.frames:
			return f, nil
		default:
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		return nil, s.err
	case <-timer.C:
		return nil, ports.ErrNoFrame
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Dropped returns how many frames were discarded because the buffer was full.
func (s *CaptureSource) Dropped() uint64 {
	return s.dropped.Load()
}

// Close stops the capture process and waits for the reader to finish.
func (s *CaptureSource) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		cancel := s.cancel
		started := s.cmd != nil
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if started {
			<-s.done
		}
		s.logger.Info("capture process stopped", log.Uint64("dropped_frames", s.Dropped()))
	})
	return nil
}

// lockedWriter serializes writes to w with mu.
type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
