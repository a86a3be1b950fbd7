package ports

import (
	"context"
	"errors"
	"time"
)

// FrameSource yields raw encoded frames (typically JPEG bytes).
type FrameSource interface {
	// TryGetFrame waits up to timeout for the next frame.
	// Returns ErrNoFrame when nothing arrived in time; the caller should
	// simply try again. Other errors are reported but are not fatal.
	TryGetFrame(ctx context.Context, timeout time.Duration) ([]byte, error)
}

// ErrNoFrame indicates that no frame was available within the timeout.
var ErrNoFrame = errors.New("no frame available")
