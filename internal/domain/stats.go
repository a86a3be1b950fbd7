package domain

import "time"

// Stats is a point-in-time snapshot of pipeline counters.
type Stats struct {
	FramesCaptured   uint64    `json:"frames_captured"`
	FramesEvicted    uint64    `json:"frames_evicted"`
	FrameWriteErrors uint64    `json:"frame_write_errors"`
	SourceErrors     uint64    `json:"source_errors"`
	BatchesEncoded   uint64    `json:"batches_encoded"`
	EncodeFailures   uint64    `json:"encode_failures"`
	FramesRetired    uint64    `json:"frames_retired"`
	EvictionHalts    uint64    `json:"eviction_halts"`
	UploadsSucceeded uint64    `json:"uploads_succeeded"`
	UploadFailures   uint64    `json:"upload_failures"`
	ArtifactsDrained uint64    `json:"artifacts_drained"`
	FramesDrained    uint64    `json:"frames_drained"`
	FrameQueueDepth  int       `json:"frame_queue_depth"`
	UploadQueueDepth int       `json:"upload_queue_depth"`
	RetainedFiles    int       `json:"retained_files"`
	RetainedBytes    int64     `json:"retained_bytes"`
	StartedAt        time.Time `json:"started_at"`
	StoppedAt        time.Time `json:"stopped_at,omitempty"`
}
