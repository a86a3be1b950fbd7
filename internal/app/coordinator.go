package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/frameship/internal/domain"
	"github.com/bft-labs/frameship/internal/metrics"
	"github.com/bft-labs/frameship/internal/ports"
	"github.com/bft-labs/frameship/internal/queue"
	"github.com/bft-labs/frameship/internal/retention"
	"github.com/bft-labs/frameship/pkg/log"
)

// Coordinator turns queued frames into encoded artifacts.
// Every BatchSize queued frames it drains the whole frame queue into one
// batch, encodes it and applies the retention policy to the inputs.
type Coordinator struct {
	batchSize int
	policy    domain.RetentionPolicy
	count     uint64

	frames  *queue.Queue[domain.FrameHandle]
	uploads *queue.Queue[domain.ArtifactHandle]
	encoder ports.BatchEncoder
	store   ports.ArtifactStore
	tracker *retention.Tracker
	stats   *counters
	logger  log.Logger
	emitter PipelineEventEmitter
}

// FrameQueued records one successfully queued frame and flushes when the
// count reaches a multiple of the batch size.
func (c *Coordinator) FrameQueued(ctx context.Context) {
	c.count++
	if c.batchSize <= 0 || c.count%uint64(c.batchSize) != 0 {
		return
	}
	c.Flush(ctx)
}

// Flush drains the frame queue and encodes everything in it as one batch.
// It returns false if the queue was empty.
func (c *Coordinator) Flush(ctx context.Context) bool {
	frames := c.frames.Drain()
	metrics.QueueDepth.WithLabelValues(metrics.QueueFrames).Set(float64(c.frames.Len()))
	if len(frames) == 0 {
		return false
	}

	batchID := uuid.NewString()
	output, err := c.store.NewArtifact()
	if err != nil {
		c.fail(fmt.Errorf("%w: allocate output: %v", domain.ErrPersistence, err), batchID, len(frames))
		c.retire(frames)
		return true
	}
	batch := domain.NewBatch(batchID, output, frames)

	// An encode in flight is not interrupted by Stop.
	start := time.Now()
	err = c.encoder.Encode(context.WithoutCancel(ctx), batch.Frames, batch.Output)
	duration := time.Since(start)

	switch {
	case err != nil:
		c.fail(fmt.Errorf("%w: %w", domain.ErrEncodeFailed, err), batch.ID, batch.Size())
	case ctx.Err() != nil:
		// Stop may already have drained the delivery queue.
		c.discard(batch)
	default:
		c.uploads.Push(batch.Output)
		c.stats.batchesEncoded.Add(1)
		metrics.BatchesTotal.WithLabelValues(metrics.ResultSuccess).Inc()
		metrics.BatchFrames.Observe(float64(batch.Size()))
		metrics.EncodeDuration.Observe(duration.Seconds())
		metrics.QueueDepth.WithLabelValues(metrics.QueueUploads).Set(float64(c.uploads.Len()))

		c.logger.Info("encoded batch",
			log.String("batch", batch.ID),
			log.Int("frames", batch.Size()),
			log.String("artifact", batch.Output.Name()),
			log.Duration("duration", duration),
		)
		if c.emitter != nil {
			c.emitter.OnBatchEncoded(batch.ID, batch.Size(), batch.Output.Path(), duration)
		}
	}

	c.retire(batch.Frames)
	return true
}

func (c *Coordinator) discard(batch *domain.Batch) {
	if err := c.store.Remove(batch.Output.Path()); err != nil {
		c.logger.Warn("failed to delete artifact encoded during shutdown",
			log.String("artifact", batch.Output.Name()),
			log.Err(err),
		)
	}
	c.stats.artifactsDrained.Add(1)
	c.logger.Info("discarded artifact encoded during shutdown",
		log.String("batch", batch.ID),
		log.String("artifact", batch.Output.Name()),
	)
}

func (c *Coordinator) fail(err error, batchID string, frameCount int) {
	c.stats.encodeFailures.Add(1)
	metrics.BatchesTotal.WithLabelValues(metrics.ResultFailure).Inc()
	c.logger.Error("batch encode failed",
		log.String("batch", batchID),
		log.Int("frames", frameCount),
		log.Err(err),
	)
	if c.emitter != nil {
		c.emitter.OnEncodeError(err, batchID, frameCount)
	}
}

// retire applies the retention policy to the input frames of a batch.
// It runs whatever the encode outcome was.
func (c *Coordinator) retire(frames []domain.FrameHandle) {
	switch c.policy {
	case domain.KeepAll:
		return

	case domain.DeleteOnSuccess:
		for _, f := range frames {
			if err := c.store.Remove(f.Path()); err != nil {
				c.logger.Warn("failed to delete frame", log.String("file", f.Name()), log.Err(err))
				continue
			}
			c.stats.framesRetired.Add(1)
		}

	case domain.DeleteWhenExceed:
		now := time.Now()
		for _, f := range frames {
			// An unstattable frame is still tracked so eviction reaches it.
			size, err := c.store.Size(f.Path())
			if err != nil {
				c.logger.Warn("cannot stat frame for retention", log.String("file", f.Name()), log.Err(err))
				size = 0
			}
			c.tracker.Track(domain.RetainedFile{Handle: f, Size: size, CreatedAt: now})
		}
		// A halted eviction is logged by the tracker and retried next batch.
		evicted, err := c.tracker.Enforce()
		c.stats.framesRetired.Add(uint64(evicted))
		if errors.Is(err, retention.ErrEvictionHalted) {
			c.stats.evictionHalts.Add(1)
		}
		metrics.RetainedBytes.Set(float64(c.tracker.Total()))
		metrics.RetainedFiles.Set(float64(c.tracker.Len()))
	}
}
