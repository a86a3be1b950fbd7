package domain

import (
	"path/filepath"
	"time"
)

// FrameHandle identifies one persisted raw frame by its local path.
type FrameHandle string

// Path returns the local filesystem path of the frame.
func (h FrameHandle) Path() string { return string(h) }

// Name returns the base file name.
func (h FrameHandle) Name() string { return filepath.Base(string(h)) }

// ArtifactHandle identifies one encoded output file by its local path.
type ArtifactHandle string

// Path returns the local filesystem path of the artifact.
func (h ArtifactHandle) Path() string { return string(h) }

// Name returns the base file name.
func (h ArtifactHandle) Name() string { return filepath.Base(string(h)) }

// RetainedFile is a consumed frame still on disk, tracked for eviction.
type RetainedFile struct {
	Handle    FrameHandle
	Size      int64
	CreatedAt time.Time
}
