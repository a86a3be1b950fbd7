package frameship

import (
	"github.com/bft-labs/frameship/internal/adapters/ffmpeg"
	"github.com/bft-labs/frameship/pkg/log"
)

// Option configures optional behavior of a Pipeline.
type Option func(*options)

// options holds the optional configuration for a Pipeline instance.
type options struct {
	logger        log.Logger
	eventHandler  EventHandler
	source        FrameSource
	encoder       BatchEncoder
	encoderConfig ffmpeg.EncoderConfig
	uploader      Uploader
	store         ArtifactStore
	status        StatusRepository
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger:        log.NoopLogger{},
		encoderConfig: ffmpeg.DefaultEncoderConfig(),
	}
}

// WithLogger sets the logger. Default: no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventHandler registers a handler for pipeline events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithSource sets the frame source. Required.
//
// If the source has a Start(context.Context) error method it is called from
// Pipeline.Start; if it implements io.Closer it is closed by Pipeline.Stop.
func WithSource(source FrameSource) Option {
	return func(o *options) {
		o.source = source
	}
}

// WithUploader sets the uploader. Required.
func WithUploader(uploader Uploader) Option {
	return func(o *options) {
		o.uploader = uploader
	}
}

// WithEncoder replaces the default ffmpeg encoder.
func WithEncoder(encoder BatchEncoder) Option {
	return func(o *options) {
		o.encoder = encoder
	}
}

// WithEncoderConfig tunes the default ffmpeg encoder. Ignored when
// WithEncoder is also given.
func WithEncoderConfig(cfg ffmpeg.EncoderConfig) Option {
	return func(o *options) {
		o.encoderConfig = cfg
	}
}

// WithStore replaces the local temp-dir store.
func WithStore(store ArtifactStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithStatusRepository replaces the status.json writer.
func WithStatusRepository(repo StatusRepository) Option {
	return func(o *options) {
		o.status = repo
	}
}
