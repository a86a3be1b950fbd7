package log

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type recordingLogger struct {
	mu      sync.Mutex
	entries [][]Field
}

func (r *recordingLogger) record(fields []Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, fields)
}

func (r *recordingLogger) Debug(msg string, fields ...Field) { r.record(fields) }
func (r *recordingLogger) Info(msg string, fields ...Field)  { r.record(fields) }
func (r *recordingLogger) Warn(msg string, fields ...Field)  { r.record(fields) }
func (r *recordingLogger) Error(msg string, fields ...Field) { r.record(fields) }

func TestNamed_PrependsComponent(t *testing.T) {
	base := &recordingLogger{}
	l := Named(base, "capture")

	l.Info("frame queued", String("path", "/tmp/f.jpg"))

	if len(base.entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(base.entries))
	}
	fields := base.entries[0]
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(fields))
	}
	if fields[0].Key != "component" || fields[0].Value != "capture" {
		t.Errorf("first field = %+v, want component=capture", fields[0])
	}
	if fields[1].Key != "path" {
		t.Errorf("second field key = %s, want path", fields[1].Key)
	}
}

func TestNamed_NilBase(t *testing.T) {
	l := Named(nil, "x")
	// Must not panic.
	l.Error("ignored", Err(errors.New("boom")))
}

func TestZerologAdapter_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithLogger(zerolog.New(&buf))

	z.Warn("eviction halted",
		String("path", "/tmp/a"),
		Int64("retained_bytes", 42),
		Err(errors.New("permission denied")),
	)

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"path":"/tmp/a"`, `"retained_bytes":42`, `"error":"permission denied"`, `"message":"eviction halted"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}

func TestZerologAdapter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapter(&buf, "warn")

	z.Info("hidden")
	z.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}

	z.Error("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected error entry, got %q", buf.String())
	}
}
