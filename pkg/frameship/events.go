package frameship

import (
	"time"

	"github.com/bft-labs/frameship/internal/app"
)

// EventHandler receives pipeline notifications. Methods are called
// synchronously from pipeline goroutines and should return quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnBatchEncoded(event BatchEncodedEvent)
	OnEncodeError(event EncodeErrorEvent)
	OnUploadSuccess(event UploadSuccessEvent)
	OnUploadError(event UploadErrorEvent)
}

// StateChangeEvent reports a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// BatchEncodedEvent reports a batch that became an artifact.
type BatchEncodedEvent struct {
	BatchID    string
	FrameCount int
	Artifact   string
	Duration   time.Duration
}

// EncodeErrorEvent reports a batch that failed to encode.
// Error wraps ErrEncodeFailed or ErrPersistence.
type EncodeErrorEvent struct {
	Error      error
	BatchID    string
	FrameCount int
}

// UploadSuccessEvent reports a delivered artifact.
type UploadSuccessEvent struct {
	Artifact string
	Bytes    int64
	Duration time.Duration
}

// UploadErrorEvent reports a dropped artifact. Error wraps ErrUploadFailed.
type UploadErrorEvent struct {
	Error    error
	Artifact string
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to
// override only the events you need.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)     {}
func (BaseEventHandler) OnBatchEncoded(BatchEncodedEvent)   {}
func (BaseEventHandler) OnEncodeError(EncodeErrorEvent)     {}
func (BaseEventHandler) OnUploadSuccess(UploadSuccessEvent) {}
func (BaseEventHandler) OnUploadError(UploadErrorEvent)     {}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnBatchEncoded(batchID string, frameCount int, artifact string, duration time.Duration) {
	if e.handler == nil {
		return
	}
	e.handler.OnBatchEncoded(BatchEncodedEvent{
		BatchID:    batchID,
		FrameCount: frameCount,
		Artifact:   artifact,
		Duration:   duration,
	})
}

func (e *eventEmitterWrapper) OnEncodeError(err error, batchID string, frameCount int) {
	if e.handler == nil {
		return
	}
	e.handler.OnEncodeError(EncodeErrorEvent{Error: err, BatchID: batchID, FrameCount: frameCount})
}

func (e *eventEmitterWrapper) OnUploadSuccess(artifact string, bytes int64, duration time.Duration) {
	if e.handler == nil {
		return
	}
	e.handler.OnUploadSuccess(UploadSuccessEvent{Artifact: artifact, Bytes: bytes, Duration: duration})
}

func (e *eventEmitterWrapper) OnUploadError(err error, artifact string) {
	if e.handler == nil {
		return
	}
	e.handler.OnUploadError(UploadErrorEvent{Error: err, Artifact: artifact})
}
