package frameship

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/bft-labs/frameship/internal/adapters/ffmpeg"
	"github.com/bft-labs/frameship/internal/adapters/fs"
	"github.com/bft-labs/frameship/internal/app"
	"github.com/bft-labs/frameship/internal/metrics"
	"github.com/bft-labs/frameship/pkg/log"
)

// Pipeline captures frames, batches and encodes them, and uploads the
// results. Use New() to create an instance, then Start() to begin.
// A Pipeline runs once; after Stop create a new one.
type Pipeline struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	pipeline  *app.Pipeline
	logger    log.Logger

	// mu serializes Start and Stop.
	mu sync.Mutex

	timesMu   sync.RWMutex
	startedAt time.Time
	stoppedAt time.Time
}

// sourceStarter is implemented by sources that need a running context,
// such as capture subprocesses.
type sourceStarter interface {
	Start(ctx context.Context) error
}

// New creates a Pipeline in StateIdle. Returns an error wrapping
// ErrInvalidConfig if the configuration or required options are missing.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.source == nil {
		return nil, invalid("a frame source is required")
	}
	if o.uploader == nil {
		return nil, invalid("an uploader is required")
	}

	logger := o.logger
	if o.store == nil {
		o.store = fs.NewLocalStore(cfg.TempDir, cfg.FrameExt, cfg.ArtifactExt)
	}
	if o.encoder == nil {
		o.encoder = ffmpeg.NewEncoder(o.encoderConfig, log.Named(logger, "ffmpeg"))
	}
	if o.status == nil {
		o.status = fs.NewStatusFile(cfg.statusDir())
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	pipeline := app.NewPipeline(app.PipelineConfig{
		BatchSize:         cfg.BatchSize,
		MaxQueueSize:      cfg.MaxQueueSize,
		UploadThreads:     cfg.UploadThreads,
		RetentionPolicy:   cfg.RetentionPolicy,
		MaxRetainedBytes:  cfg.MaxRetainedBytes(),
		FrameTimeout:      cfg.FrameTimeout,
		CaptureInterval:   cfg.CaptureInterval,
		IdleInterval:      cfg.IdleInterval,
		CaptureBackoffMax: cfg.CaptureBackoffMax,
		KeepFailedUploads: cfg.KeepFailedUploads,
	}, app.Deps{
		Source:   o.source,
		Encoder:  o.encoder,
		Uploader: o.uploader,
		Store:    o.store,
	}, logger, emitter)

	return &Pipeline{
		config:    cfg,
		opts:      o,
		lifecycle: app.NewLifecycle(log.Named(logger, "lifecycle"), emitter),
		pipeline:  pipeline,
		logger:    logger,
	}, nil
}

// Start launches the capture loop and delivery workers and returns.
// Returns ErrAlreadyRunning or ErrAlreadyStopped if not idle.
// The provided context bounds the lifetime of the pipeline; canceling it
// has the same effect on the goroutines as Stop, but Stop must still be
// called to drain and reach StateStopped.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.lifecycle.StartError(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)

	if s, ok := p.opts.source.(sourceStarter); ok {
		if err := s.Start(runCtx); err != nil {
			cancel()
			return err
		}
	}

	p.lifecycle.SetCancel(cancel)
	if err := p.lifecycle.TransitionTo(app.StateRunning, "Start() called"); err != nil {
		cancel()
		return err
	}
	p.timesMu.Lock()
	p.startedAt = time.Now().UTC()
	p.timesMu.Unlock()

	metrics.PipelineRunning.Set(1)
	p.pipeline.Launch(runCtx, p.lifecycle)
	return nil
}

// Stop signals all loops, waits up to ShutdownTimeout for in-flight work,
// closes the source, deletes everything still queued and writes the
// status file. Returns ErrNotRunning if the pipeline is not running and
// ErrShutdownTimeout if in-flight work outlived the timeout.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.lifecycle.CanStop() {
		return ErrNotRunning
	}
	if err := p.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		return err
	}

	p.lifecycle.Cancel()
	waitErr := p.lifecycle.WaitWithTimeout(p.config.ShutdownTimeout)

	if c, ok := p.opts.source.(io.Closer); ok {
		if err := c.Close(); err != nil {
			p.logger.Warn("failed to close frame source", log.Err(err))
		}
	}

	p.pipeline.Drain()
	p.timesMu.Lock()
	p.stoppedAt = time.Now().UTC()
	p.timesMu.Unlock()

	stats := p.Stats()
	if err := p.opts.status.Save(context.Background(), stats); err != nil {
		p.logger.Error("failed to write status", log.Err(err))
	}
	metrics.PipelineRunning.Set(0)

	reason := "graceful shutdown"
	if errors.Is(waitErr, ErrShutdownTimeout) {
		reason = "shutdown timeout"
	}
	_ = p.lifecycle.TransitionTo(app.StateStopped, reason)

	p.logger.Info("pipeline stopped",
		log.Uint64("frames_captured", stats.FramesCaptured),
		log.Uint64("batches_encoded", stats.BatchesEncoded),
		log.Uint64("uploads_succeeded", stats.UploadsSucceeded),
		log.Uint64("upload_failures", stats.UploadFailures),
	)
	return waitErr
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (p *Pipeline) Status() State {
	return convertState(p.lifecycle.State())
}

// Stats returns a snapshot of pipeline counters.
// Safe to call concurrently from any goroutine.
func (p *Pipeline) Stats() Stats {
	s := p.pipeline.Stats()

	p.timesMu.RLock()
	defer p.timesMu.RUnlock()
	s.StartedAt = p.startedAt
	s.StoppedAt = p.stoppedAt
	return s
}

// Done returns a channel that is closed when the pipeline reaches StateStopped.
func (p *Pipeline) Done() <-chan struct{} {
	return p.lifecycle.Done()
}

// Run starts the pipeline, blocks until ctx is done, then stops it.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return p.Stop()
}
