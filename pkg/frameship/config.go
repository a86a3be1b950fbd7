package frameship

import (
	"fmt"
	"time"

	"github.com/bft-labs/frameship/internal/domain"
)

// Default configuration values.
const (
	DefaultTempDir           = "./tmp"
	DefaultBatchSize         = 8
	DefaultMaxQueueSize      = 20
	DefaultUploadThreads     = 2
	DefaultMaxMemoryMB       = 1024
	DefaultFrameTimeout      = time.Second
	DefaultCaptureInterval   = 10 * time.Millisecond
	DefaultIdleInterval      = 100 * time.Millisecond
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultCaptureBackoffMax = 5 * time.Second
)

// Config holds every pipeline tunable. It is read once by New.
type Config struct {
	// TempDir holds frames and encoded artifacts. Created on demand.
	TempDir string

	// StatusDir receives status.json at stop. Default: TempDir
	StatusDir string

	// BatchSize is the number of queued frames that triggers a batch.
	BatchSize int

	// MaxQueueSize bounds unconsumed frames; the oldest is dropped past it.
	MaxQueueSize int

	// UploadThreads is the number of delivery workers.
	UploadThreads int

	// RetentionPolicy selects what happens to frames after their batch.
	// The zero value is KeepAll; DefaultConfig uses DeleteOnSuccess.
	RetentionPolicy RetentionPolicy

	// MaxMemoryMB is the retained-frames budget for DeleteWhenExceed.
	// Zero evicts every frame once its batch is done; DefaultConfig uses
	// DefaultMaxMemoryMB.
	MaxMemoryMB int64

	// FrameTimeout bounds one wait on the frame source.
	FrameTimeout time.Duration

	// CaptureInterval is the pause between capture iterations.
	CaptureInterval time.Duration

	// IdleInterval is how long a worker sleeps on an empty upload queue.
	IdleInterval time.Duration

	// ShutdownTimeout bounds how long Stop waits for in-flight work.
	ShutdownTimeout time.Duration

	// CaptureBackoffMax caps the backoff after consecutive source errors.
	CaptureBackoffMax time.Duration

	// KeepFailedUploads leaves artifacts on disk when their upload fails.
	KeepFailedUploads bool

	// FrameExt and ArtifactExt name persisted files. Default: jpg, h264
	FrameExt    string
	ArtifactExt string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	cfg := Config{RetentionPolicy: DeleteOnSuccess, MaxMemoryMB: DefaultMaxMemoryMB}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero-valued fields. RetentionPolicy is left alone since
// its zero value is meaningful, as is a zero MaxMemoryMB. An empty
// StatusDir keeps following TempDir.
func (c *Config) SetDefaults() {
	if c.TempDir == "" {
		c.TempDir = DefaultTempDir
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MaxQueueSize == 0 {
		c.MaxQueueSize = DefaultMaxQueueSize
	}
	if c.UploadThreads == 0 {
		c.UploadThreads = DefaultUploadThreads
	}
	if c.FrameTimeout == 0 {
		c.FrameTimeout = DefaultFrameTimeout
	}
	if c.CaptureInterval == 0 {
		c.CaptureInterval = DefaultCaptureInterval
	}
	if c.IdleInterval == 0 {
		c.IdleInterval = DefaultIdleInterval
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.CaptureBackoffMax == 0 {
		c.CaptureBackoffMax = DefaultCaptureBackoffMax
	}
	if c.FrameExt == "" {
		c.FrameExt = "jpg"
	}
	if c.ArtifactExt == "" {
		c.ArtifactExt = "h264"
	}
}

// Validate checks the configuration. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.TempDir == "":
		return invalid("temp dir is required")
	case c.BatchSize < 1:
		return invalid("batch size must be at least 1, got %d", c.BatchSize)
	case c.MaxQueueSize < 1:
		return invalid("max queue size must be at least 1, got %d", c.MaxQueueSize)
	case c.UploadThreads < 1:
		return invalid("upload threads must be at least 1, got %d", c.UploadThreads)
	case !c.RetentionPolicy.Valid():
		return invalid("unknown retention policy %d", int(c.RetentionPolicy))
	case c.MaxMemoryMB < 0:
		return invalid("max memory must not be negative, got %d", c.MaxMemoryMB)
	case c.FrameTimeout <= 0:
		return invalid("frame timeout must be positive")
	case c.CaptureInterval < 0:
		return invalid("capture interval must not be negative")
	case c.IdleInterval <= 0:
		return invalid("idle interval must be positive")
	case c.ShutdownTimeout <= 0:
		return invalid("shutdown timeout must be positive")
	}
	return nil
}

// statusDir returns where status.json is written.
func (c *Config) statusDir() string {
	if c.StatusDir != "" {
		return c.StatusDir
	}
	return c.TempDir
}

// MaxRetainedBytes returns the retention budget in bytes.
func (c *Config) MaxRetainedBytes() int64 {
	return c.MaxMemoryMB * 1024 * 1024
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, fmt.Sprintf(format, args...))
}
