package app

import (
	"context"
	"errors"

	"github.com/bft-labs/frameship/internal/domain"
	"github.com/bft-labs/frameship/internal/metrics"
	"github.com/bft-labs/frameship/internal/ports"
	"github.com/bft-labs/frameship/internal/queue"
	"github.com/bft-labs/frameship/pkg/log"
)

// Capturer pulls frames from the source, persists them and feeds the
// frame queue. The coordinator runs synchronously on the same goroutine.
type Capturer struct {
	config      PipelineConfig
	source      ports.FrameSource
	store       ports.ArtifactStore
	frames      *queue.Queue[domain.FrameHandle]
	coordinator *Coordinator
	stats       *counters
	logger      log.Logger
}

// Run executes the capture loop until ctx is canceled.
// A failing frame is logged and skipped; the loop never exits on error.
func (c *Capturer) Run(ctx context.Context) {
	bo := newBackoff(DefaultBackoffInitial, c.config.CaptureBackoffMax)

	for {
		if ctx.Err() != nil {
			return
		}

		if err := c.captureOne(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			if !bo.Wait(ctx) {
				return
			}
			continue
		}
		bo.Reset()

		if !sleepContext(ctx, c.config.CaptureInterval) {
			return
		}
	}
}

// captureOne runs a single iteration. It returns an error only for source
// failures, which the caller backs off on.
func (c *Capturer) captureOne(ctx context.Context) error {
	data, err := c.source.TryGetFrame(ctx, c.config.FrameTimeout)
	if err != nil {
		if errors.Is(err, ports.ErrNoFrame) || ctx.Err() != nil {
			return nil
		}
		c.stats.sourceErrors.Add(1)
		metrics.CaptureErrors.WithLabelValues(metrics.StageSource).Inc()
		c.logger.Error("frame source error", log.Err(err))
		return err
	}

	handle, err := c.store.WriteFrame(data)
	if err != nil {
		c.stats.frameWriteErrors.Add(1)
		metrics.CaptureErrors.WithLabelValues(metrics.StagePersist).Inc()
		c.logger.Error("failed to persist frame",
			log.Int("bytes", len(data)),
			log.Err(err),
		)
		return nil
	}

	c.frames.Push(handle)
	c.stats.framesCaptured.Add(1)
	metrics.FramesCaptured.Inc()

	if c.frames.Len() > c.config.MaxQueueSize {
		c.evictOldest()
	}
	metrics.QueueDepth.WithLabelValues(metrics.QueueFrames).Set(float64(c.frames.Len()))

	c.coordinator.FrameQueued(ctx)
	return nil
}

// evictOldest drops the head of the frame queue and deletes its file.
// Evicted frames bypass retention.
func (c *Capturer) evictOldest() {
	oldest, ok := c.frames.Pop()
	if !ok {
		return
	}
	c.stats.framesEvicted.Add(1)
	metrics.FramesEvicted.Inc()

	if err := c.store.Remove(oldest.Path()); err != nil {
		c.logger.Warn("failed to delete evicted frame",
			log.String("file", oldest.Name()),
			log.Err(err),
		)
		return
	}
	c.logger.Debug("frame queue full, evicted oldest frame", log.String("file", oldest.Name()))
}
