package ports

import "github.com/bft-labs/frameship/internal/domain"

// ArtifactStore manages the local temp directory holding frames and
// encoded outputs.
type ArtifactStore interface {
	// WriteFrame persists frame bytes under a fresh unique name.
	WriteFrame(data []byte) (domain.FrameHandle, error)

	// NewArtifact returns a fresh unique output handle. No file is created.
	NewArtifact() (domain.ArtifactHandle, error)

	// Remove deletes the file at path. A missing file is not an error.
	Remove(path string) error

	// Size returns the size in bytes of the file at path.
	Size(path string) (int64, error)

	// Dir returns the directory the store writes into.
	Dir() string
}
