package domain

import "errors"

// Domain errors represent error conditions in the frameship pipeline.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running pipeline.
	ErrAlreadyRunning = errors.New("frameship: already running")

	// ErrAlreadyStopped is returned when Start() is called after the pipeline stopped.
	// A pipeline runs once; build a new one to capture again.
	ErrAlreadyStopped = errors.New("frameship: already stopped")

	// ErrNotRunning is returned when Stop() is called on a pipeline that is not running.
	ErrNotRunning = errors.New("frameship: not running")

	// ErrShutdownTimeout is returned when in-flight work outlives the shutdown timeout.
	ErrShutdownTimeout = errors.New("frameship: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("frameship: invalid configuration")

	// ErrPersistence wraps failures to write or delete local artifacts.
	ErrPersistence = errors.New("frameship: persistence failure")

	// ErrEncodeFailed wraps failures reported by the batch encoder.
	ErrEncodeFailed = errors.New("frameship: encode failed")

	// ErrUploadFailed wraps failures reported by the uploader.
	ErrUploadFailed = errors.New("frameship: upload failed")
)
