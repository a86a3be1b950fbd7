package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"FramesCaptured", FramesCaptured},
		{"FramesEvicted", FramesEvicted},
		{"CaptureErrors", CaptureErrors},
		{"BatchesTotal", BatchesTotal},
		{"BatchFrames", BatchFrames},
		{"EncodeDuration", EncodeDuration},
		{"UploadsTotal", UploadsTotal},
		{"UploadDuration", UploadDuration},
		{"QueueDepth", QueueDepth},
		{"RetainedBytes", RetainedBytes},
		{"RetainedFiles", RetainedFiles},
		{"PipelineRunning", PipelineRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestInitializeMetrics_ExportsLabels(t *testing.T) {
	InitializeMetrics()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	want := map[string]bool{
		"frameship_capture_errors_total": false,
		"frameship_batches_total":        false,
		"frameship_uploads_total":        false,
		"frameship_queue_depth":          false,
	}
	for _, mf := range families {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
		if strings.HasPrefix(mf.GetName(), "frameship_") && mf.GetHelp() == "" {
			t.Errorf("%s has no help text", mf.GetName())
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("metric %s not exported after InitializeMetrics", name)
		}
	}
}
