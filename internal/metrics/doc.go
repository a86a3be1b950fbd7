// Package metrics provides Prometheus instrumentation for frameship.
//
// All metrics are prefixed with "frameship_" and registered on the default
// registry through promauto; the CLI exposes them with promhttp.
//
// # Metric Categories
//
// ## Capture
//   - FramesCaptured: frames persisted to the temp directory
//   - FramesEvicted: frames dropped by the frame queue bound
//   - CaptureErrors: source and persistence failures by stage
//
// ## Encoding
//   - BatchesTotal: batches handed to the encoder by result
//   - BatchFrames: histogram of frames per batch
//   - EncodeDuration: histogram of encode duration
//
// ## Delivery
//   - UploadsTotal: uploads by result
//   - UploadDuration: histogram of upload duration
//
// ## Footprint
//   - QueueDepth: frame and upload queue depth
//   - RetainedBytes / RetainedFiles: files kept under retention
//   - PipelineRunning: 1 while the pipeline is running
package metrics
