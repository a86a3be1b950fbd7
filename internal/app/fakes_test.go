package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/frameship/internal/domain"
	"github.com/bft-labs/frameship/internal/ports"
)

// memStore is an in-memory ArtifactStore. Files exist only once written.
type memStore struct {
	mu       sync.Mutex
	files    map[string]int64
	seq      int
	failSize map[string]bool
	failRm   map[string]bool
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string]int64)}
}

func (s *memStore) WriteFrame(data []byte) (domain.FrameHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	p := fmt.Sprintf("frame_%04d.jpg", s.seq)
	s.files[p] = int64(len(data))
	return domain.FrameHandle(p), nil
}

func (s *memStore) NewArtifact() (domain.ArtifactHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return domain.ArtifactHandle(fmt.Sprintf("out_%04d.h264", s.seq)), nil
}

func (s *memStore) Remove(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRm[path] {
		return errors.New("permission denied")
	}
	delete(s.files, path)
	return nil
}

func (s *memStore) Size(path string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.files[path]
	if !ok || s.failSize[path] {
		return 0, os.ErrNotExist
	}
	return n, nil
}

func (s *memStore) Dir() string { return "mem" }

func (s *memStore) put(path string, size int64) {
	s.mu.Lock()
	s.files[path] = size
	s.mu.Unlock()
}

func (s *memStore) has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[path]
	return ok
}

func (s *memStore) list() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// sliceSource hands out queued frames, then reports ErrNoFrame.
type sliceSource struct {
	mu     sync.Mutex
	frames [][]byte
	errs   []error
}

func (s *sliceSource) add(frames ...[]byte) {
	s.mu.Lock()
	s.frames = append(s.frames, frames...)
	s.mu.Unlock()
}

func (s *sliceSource) TryGetFrame(ctx context.Context, timeout time.Duration) ([]byte, error) {
	s.mu.Lock()
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		s.mu.Unlock()
		return nil, err
	}
	if len(s.frames) > 0 {
		f := s.frames[0]
		s.frames = s.frames[1:]
		s.mu.Unlock()
		return f, nil
	}
	s.mu.Unlock()

	wait := timeout
	if wait > 5*time.Millisecond {
		wait = 5 * time.Millisecond
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(wait):
		return nil, ports.ErrNoFrame
	}
}

// mockEncoder records batches and writes the output on success. When block
// is set each encode signals started and waits for release.
type mockEncoder struct {
	mu      sync.Mutex
	store   *memStore
	fail    bool
	block   bool
	started chan struct{}
	release chan struct{}
	batches [][]domain.FrameHandle
}

func (e *mockEncoder) Encode(ctx context.Context, frames []domain.FrameHandle, output domain.ArtifactHandle) error {
	e.mu.Lock()
	e.batches = append(e.batches, append([]domain.FrameHandle{}, frames...))
	fail := e.fail
	e.mu.Unlock()

	if e.block {
		e.started <- struct{}{}
		<-e.release
	}
	if fail {
		return errors.New("ffmpeg exited with status 1")
	}
	e.store.put(output.Path(), int64(len(frames))*100)
	return nil
}

func (e *mockEncoder) Batches() [][]domain.FrameHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]domain.FrameHandle{}, e.batches...)
}

// mockUploader records uploads. When block is set each upload signals
// started and waits for release.
type mockUploader struct {
	mu       sync.Mutex
	uploaded []domain.ArtifactHandle
	fail     bool
	block    bool
	started  chan domain.ArtifactHandle
	release  chan struct{}
}

func (u *mockUploader) Upload(ctx context.Context, artifact domain.ArtifactHandle) error {
	if u.block {
		u.started <- artifact
		<-u.release
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.fail {
		return errors.New("503 service unavailable")
	}
	u.uploaded = append(u.uploaded, artifact)
	return nil
}

func (u *mockUploader) Uploaded() []domain.ArtifactHandle {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]domain.ArtifactHandle{}, u.uploaded...)
}

// recordingEmitter captures pipeline events.
type recordingEmitter struct {
	mu         sync.Mutex
	encoded    int
	encodeErrs []error
	uploaded   int
	uploadErrs []error
}

func (r *recordingEmitter) OnBatchEncoded(string, int, string, time.Duration) {
	r.mu.Lock()
	r.encoded++
	r.mu.Unlock()
}

func (r *recordingEmitter) OnEncodeError(err error, _ string, _ int) {
	r.mu.Lock()
	r.encodeErrs = append(r.encodeErrs, err)
	r.mu.Unlock()
}

func (r *recordingEmitter) OnUploadSuccess(string, int64, time.Duration) {
	r.mu.Lock()
	r.uploaded++
	r.mu.Unlock()
}

func (r *recordingEmitter) OnUploadError(err error, _ string) {
	r.mu.Lock()
	r.uploadErrs = append(r.uploadErrs, err)
	r.mu.Unlock()
}

func testConfig() PipelineConfig {
	return PipelineConfig{
		BatchSize:         4,
		MaxQueueSize:      20,
		UploadThreads:     1,
		RetentionPolicy:   domain.KeepAll,
		MaxRetainedBytes:  1 << 20,
		FrameTimeout:      10 * time.Millisecond,
		CaptureInterval:   0,
		IdleInterval:      5 * time.Millisecond,
		CaptureBackoffMax: 10 * time.Millisecond,
	}
}

type fixture struct {
	store    *memStore
	source   *sliceSource
	encoder  *mockEncoder
	uploader *mockUploader
	emitter  *recordingEmitter
	pipeline *Pipeline
}

func newFixture(cfg PipelineConfig) *fixture {
	store := newMemStore()
	f := &fixture{
		store:    store,
		source:   &sliceSource{},
		encoder:  &mockEncoder{store: store},
		uploader: &mockUploader{},
		emitter:  &recordingEmitter{},
	}
	f.pipeline = NewPipeline(cfg, Deps{
		Source:   f.source,
		Encoder:  f.encoder,
		Uploader: f.uploader,
		Store:    store,
	}, mockLogger{}, f.emitter)
	return f
}

// captureN feeds n frames through the capture step synchronously.
func (f *fixture) captureN(t testing.TB, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		f.source.add([]byte("jpeg"))
		if err := f.pipeline.capture.captureOne(context.Background()); err != nil {
			t.Fatalf("captureOne() error = %v", err)
		}
	}
}
