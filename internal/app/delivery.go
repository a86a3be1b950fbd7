package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bft-labs/frameship/internal/domain"
	"github.com/bft-labs/frameship/internal/metrics"
	"github.com/bft-labs/frameship/internal/ports"
	"github.com/bft-labs/frameship/internal/queue"
	"github.com/bft-labs/frameship/pkg/log"
)

// DeliveryPool runs the upload workers. Workers share the upload queue and
// make no ordering guarantees between each other.
type DeliveryPool struct {
	workers    int
	idle       time.Duration
	keepFailed bool

	uploads  *queue.Queue[domain.ArtifactHandle]
	uploader ports.Uploader
	store    ports.ArtifactStore
	stats    *counters
	logger   log.Logger
	emitter  PipelineEventEmitter
}

func (d *DeliveryPool) runWorker(ctx context.Context, id int) {
	d.logger.Debug("upload worker started", log.Int("worker", id))
	defer d.logger.Debug("upload worker exited", log.Int("worker", id))

	for {
		if ctx.Err() != nil {
			return
		}

		artifact, ok := d.uploads.Pop()
		if !ok {
			if !sleepContext(ctx, d.idle) {
				return
			}
			continue
		}
		metrics.QueueDepth.WithLabelValues(metrics.QueueUploads).Set(float64(d.uploads.Len()))

		d.deliver(ctx, id, artifact)
	}
}

// deliver uploads one artifact. Failed uploads are dropped, never re-queued.
func (d *DeliveryPool) deliver(ctx context.Context, id int, artifact domain.ArtifactHandle) {
	size, _ := d.store.Size(artifact.Path())

	// An upload in flight is not interrupted by Stop.
	start := time.Now()
	err := d.uploader.Upload(context.WithoutCancel(ctx), artifact)
	duration := time.Since(start)
	metrics.UploadDuration.Observe(duration.Seconds())

	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrUploadFailed, err)
		d.stats.uploadFailures.Add(1)
		metrics.UploadsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		d.logger.Error("upload failed, dropping artifact",
			log.Int("worker", id),
			log.String("artifact", artifact.Name()),
			log.Bool("kept_local", d.keepFailed),
			log.Err(err),
		)
		if d.emitter != nil {
			d.emitter.OnUploadError(err, artifact.Path())
		}
		if !d.keepFailed {
			d.remove(artifact)
		}
		return
	}

	d.stats.uploadsSucceeded.Add(1)
	metrics.UploadsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	d.logger.Info("uploaded artifact",
		log.Int("worker", id),
		log.String("artifact", artifact.Name()),
		log.Int64("bytes", size),
		log.Duration("duration", duration),
	)
	if d.emitter != nil {
		d.emitter.OnUploadSuccess(artifact.Path(), size, duration)
	}
	d.remove(artifact)
}

func (d *DeliveryPool) remove(artifact domain.ArtifactHandle) {
	if err := d.store.Remove(artifact.Path()); err != nil {
		d.logger.Warn("failed to delete artifact", log.String("artifact", artifact.Name()), log.Err(err))
	}
}
