package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Capture metrics
var (
	FramesCaptured = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "frameship_frames_captured_total",
			Help: "Total number of frames persisted to the temp directory",
		},
	)

	FramesEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "frameship_frames_evicted_total",
			Help: "Total number of unconsumed frames dropped because the frame queue was full",
		},
	)

	CaptureErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameship_capture_errors_total",
			Help: "Total number of capture failures",
		},
		[]string{"stage"}, // "source", "persist"
	)
)

// Encoding metrics
var (
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameship_batches_total",
			Help: "Total number of batches handed to the encoder",
		},
		[]string{"result"}, // "success", "failure"
	)

	BatchFrames = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "frameship_batch_frames",
			Help:    "Number of frames per encoded batch",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
		},
	)

	EncodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "frameship_encode_duration_seconds",
			Help:    "Batch encode duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Delivery metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameship_uploads_total",
			Help: "Total number of artifact uploads",
		},
		[]string{"result"}, // "success", "failure"
	)

	UploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "frameship_upload_duration_seconds",
			Help:    "Artifact upload duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Footprint metrics
var (
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "frameship_queue_depth",
			Help: "Number of items waiting in a pipeline queue",
		},
		[]string{"queue"}, // "frames", "uploads"
	)

	RetainedBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "frameship_retained_bytes",
			Help: "Total size of consumed frame files kept under retention",
		},
	)

	RetainedFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "frameship_retained_files",
			Help: "Number of consumed frame files kept under retention",
		},
	)

	PipelineRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "frameship_pipeline_running",
			Help: "Whether the pipeline is running (1 = running, 0 = stopped)",
		},
	)
)

// Label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"

	StageSource  = "source"
	StagePersist = "persist"

	QueueFrames  = "frames"
	QueueUploads = "uploads"
)

// InitializeMetrics pre-populates label combinations so that every series
// is exported from the first scrape.
func InitializeMetrics() {
	for _, stage := range []string{StageSource, StagePersist} {
		CaptureErrors.WithLabelValues(stage)
	}
	for _, result := range []string{ResultSuccess, ResultFailure} {
		BatchesTotal.WithLabelValues(result)
		UploadsTotal.WithLabelValues(result)
	}
	for _, q := range []string{QueueFrames, QueueUploads} {
		QueueDepth.WithLabelValues(q).Set(0)
	}
}
