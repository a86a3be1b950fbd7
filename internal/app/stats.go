package app

import (
	"sync/atomic"

	"github.com/bft-labs/frameship/internal/domain"
)

// counters holds the pipeline's running totals.
// Fields are updated from the capture and delivery goroutines.
type counters struct {
	framesCaptured   atomic.Uint64
	framesEvicted    atomic.Uint64
	frameWriteErrors atomic.Uint64
	sourceErrors     atomic.Uint64
	batchesEncoded   atomic.Uint64
	encodeFailures   atomic.Uint64
	framesRetired    atomic.Uint64
	evictionHalts    atomic.Uint64
	uploadsSucceeded atomic.Uint64
	uploadFailures   atomic.Uint64
	artifactsDrained atomic.Uint64
	framesDrained    atomic.Uint64
}

func (c *counters) snapshot() domain.Stats {
	return domain.Stats{
		FramesCaptured:   c.framesCaptured.Load(),
		FramesEvicted:    c.framesEvicted.Load(),
		FrameWriteErrors: c.frameWriteErrors.Load(),
		SourceErrors:     c.sourceErrors.Load(),
		BatchesEncoded:   c.batchesEncoded.Load(),
		EncodeFailures:   c.encodeFailures.Load(),
		FramesRetired:    c.framesRetired.Load(),
		EvictionHalts:    c.evictionHalts.Load(),
		UploadsSucceeded: c.uploadsSucceeded.Load(),
		UploadFailures:   c.uploadFailures.Load(),
		ArtifactsDrained: c.artifactsDrained.Load(),
		FramesDrained:    c.framesDrained.Load(),
	}
}
