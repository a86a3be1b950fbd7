package app

import "time"

// PipelineEventEmitter receives per-batch and per-upload outcomes.
// Calls are made synchronously from pipeline goroutines.
type PipelineEventEmitter interface {
	OnBatchEncoded(batchID string, frameCount int, artifact string, duration time.Duration)
	OnEncodeError(err error, batchID string, frameCount int)
	OnUploadSuccess(artifact string, bytes int64, duration time.Duration)
	OnUploadError(err error, artifact string)
}
