package app

import (
	"context"
	"time"

	"github.com/bft-labs/frameship/internal/domain"
	"github.com/bft-labs/frameship/internal/metrics"
	"github.com/bft-labs/frameship/internal/ports"
	"github.com/bft-labs/frameship/internal/queue"
	"github.com/bft-labs/frameship/internal/retention"
	"github.com/bft-labs/frameship/pkg/log"
)

// PipelineConfig contains the tunables read by the pipeline stages.
type PipelineConfig struct {
	BatchSize         int
	MaxQueueSize      int
	UploadThreads     int
	RetentionPolicy   domain.RetentionPolicy
	MaxRetainedBytes  int64
	FrameTimeout      time.Duration
	CaptureInterval   time.Duration
	IdleInterval      time.Duration
	CaptureBackoffMax time.Duration
	KeepFailedUploads bool
}

// Deps groups the ports the pipeline talks to.
type Deps struct {
	Source   ports.FrameSource
	Encoder  ports.BatchEncoder
	Uploader ports.Uploader
	Store    ports.ArtifactStore
}

// Pipeline wires capture, batching and delivery around two queues.
type Pipeline struct {
	config PipelineConfig
	deps   Deps
	logger log.Logger

	frames  *queue.Queue[domain.FrameHandle]
	uploads *queue.Queue[domain.ArtifactHandle]
	tracker *retention.Tracker
	stats   counters

	capture     *Capturer
	coordinator *Coordinator
	delivery    *DeliveryPool
}

// NewPipeline creates a pipeline. Nothing runs until Launch.
func NewPipeline(config PipelineConfig, deps Deps, logger log.Logger, emitter PipelineEventEmitter) *Pipeline {
	if logger == nil {
		logger = log.NoopLogger{}
	}

	p := &Pipeline{
		config:  config,
		deps:    deps,
		logger:  logger,
		frames:  queue.New[domain.FrameHandle](),
		uploads: queue.New[domain.ArtifactHandle](),
	}
	p.tracker = retention.New(config.MaxRetainedBytes, deps.Store, log.Named(logger, "retention"))

	p.coordinator = &Coordinator{
		batchSize: config.BatchSize,
		policy:    config.RetentionPolicy,
		frames:    p.frames,
		uploads:   p.uploads,
		encoder:   deps.Encoder,
		store:     deps.Store,
		tracker:   p.tracker,
		stats:     &p.stats,
		logger:    log.Named(logger, "coordinator"),
		emitter:   emitter,
	}
	p.capture = &Capturer{
		config:      config,
		source:      deps.Source,
		store:       deps.Store,
		frames:      p.frames,
		coordinator: p.coordinator,
		stats:       &p.stats,
		logger:      log.Named(logger, "capture"),
	}
	p.delivery = &DeliveryPool{
		workers:    config.UploadThreads,
		idle:       config.IdleInterval,
		keepFailed: config.KeepFailedUploads,
		uploads:    p.uploads,
		uploader:   deps.Uploader,
		store:      deps.Store,
		stats:      &p.stats,
		logger:     log.Named(logger, "delivery"),
		emitter:    emitter,
	}
	return p
}

// Launch starts the capture goroutine and the delivery workers on lc.
// All goroutines exit once ctx is canceled and their current item is done.
func (p *Pipeline) Launch(ctx context.Context, lc *Lifecycle) {
	lc.Go(func() { p.capture.Run(ctx) })
	for i := 0; i < p.delivery.workers; i++ {
		id := i
		lc.Go(func() { p.delivery.runWorker(ctx, id) })
	}
	p.logger.Info("pipeline launched",
		log.Int("upload_threads", p.delivery.workers),
		log.Int("batch_size", p.config.BatchSize),
		log.Int("max_queue_size", p.config.MaxQueueSize),
		log.String("retention", p.config.RetentionPolicy.String()),
	)
}

// Drain empties both queues and deletes every backing file regardless of
// the retention policy. Call it only after all pipeline goroutines exited.
func (p *Pipeline) Drain() {
	for _, f := range p.frames.Drain() {
		if err := p.deps.Store.Remove(f.Path()); err != nil {
			p.logger.Warn("failed to delete queued frame", log.String("file", f.Name()), log.Err(err))
		}
		p.stats.framesDrained.Add(1)
	}
	for _, a := range p.uploads.Drain() {
		if err := p.deps.Store.Remove(a.Path()); err != nil {
			p.logger.Warn("failed to delete queued artifact", log.String("file", a.Name()), log.Err(err))
		}
		p.stats.artifactsDrained.Add(1)
	}
	p.publishDepths()

	s := p.stats.snapshot()
	p.logger.Info("queues drained",
		log.Uint64("frames", s.FramesDrained),
		log.Uint64("artifacts", s.ArtifactsDrained),
	)
}

// Stats returns a snapshot of counters, queue depths and retention usage.
func (p *Pipeline) Stats() domain.Stats {
	s := p.stats.snapshot()
	s.FrameQueueDepth = p.frames.Len()
	s.UploadQueueDepth = p.uploads.Len()
	s.RetainedFiles = p.tracker.Len()
	s.RetainedBytes = p.tracker.Total()
	return s
}

func (p *Pipeline) publishDepths() {
	metrics.QueueDepth.WithLabelValues(metrics.QueueFrames).Set(float64(p.frames.Len()))
	metrics.QueueDepth.WithLabelValues(metrics.QueueUploads).Set(float64(p.uploads.Len()))
}
