package frameship

import (
	"github.com/bft-labs/frameship/internal/adapters/ffmpeg"
	"github.com/bft-labs/frameship/internal/app"
	"github.com/bft-labs/frameship/internal/domain"
	"github.com/bft-labs/frameship/internal/ports"
)

// Port interfaces re-exported for embedders.
type (
	// FrameSource yields raw frames. See ports.FrameSource.
	FrameSource = ports.FrameSource

	// BatchEncoder combines frames into one artifact.
	BatchEncoder = ports.BatchEncoder

	// Uploader delivers an artifact to the remote store.
	Uploader = ports.Uploader

	// ArtifactStore manages local frame and artifact files.
	ArtifactStore = ports.ArtifactStore

	// StatusRepository persists the final stats snapshot.
	StatusRepository = ports.StatusRepository

	// HTTPClient is satisfied by *http.Client.
	HTTPClient = ports.HTTPClient
)

// Value types.
type (
	FrameHandle     = domain.FrameHandle
	ArtifactHandle  = domain.ArtifactHandle
	Stats           = domain.Stats
	RetentionPolicy = domain.RetentionPolicy
)

// Retention policies.
const (
	KeepAll          = domain.KeepAll
	DeleteOnSuccess  = domain.DeleteOnSuccess
	DeleteWhenExceed = domain.DeleteWhenExceed
)

// ParseRetentionPolicy parses a policy name or numeric code.
func ParseRetentionPolicy(s string) (RetentionPolicy, error) {
	return domain.ParseRetentionPolicy(s)
}

// Errors returned by the pipeline. Check with errors.Is.
var (
	ErrNoFrame         = ports.ErrNoFrame
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrAlreadyStopped  = domain.ErrAlreadyStopped
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrEncodeFailed    = domain.ErrEncodeFailed
	ErrUploadFailed    = domain.ErrUploadFailed
	ErrPersistence     = domain.ErrPersistence
)

// State is the lifecycle state of a Pipeline.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

func convertState(s app.State) State {
	switch s {
	case app.StateIdle:
		return StateIdle
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateStopped:
		return StateStopped
	default:
		return StateIdle
	}
}

// EncoderConfig tunes the default ffmpeg encoder.
type EncoderConfig = ffmpeg.EncoderConfig

// DefaultEncoderConfig returns the default ffmpeg encode settings.
func DefaultEncoderConfig() EncoderConfig {
	return ffmpeg.DefaultEncoderConfig()
}
