package ports

import (
	"context"

	"github.com/bft-labs/frameship/internal/domain"
)

// BatchEncoder combines an ordered list of persisted frames into a single
// output artifact.
type BatchEncoder interface {
	// Encode writes the combined artifact to output.
	// Encoding is all-or-nothing: on error no file remains at output.
	Encode(ctx context.Context, frames []domain.FrameHandle, output domain.ArtifactHandle) error
}
