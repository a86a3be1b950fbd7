package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bft-labs/frameship/internal/domain"
)

// Default file extensions.
const (
	DefaultFrameExt    = "jpg"
	DefaultArtifactExt = "h264"
)

// LocalStore implements ports.ArtifactStore on a local temp directory.
// Frames are named frame_<unixnano>.<ext> and outputs out_<unixnano>.<ext>;
// timestamps are forced strictly increasing so names never collide and
// sort in creation order.
type LocalStore struct {
	dir         string
	frameExt    string
	artifactExt string

	mu   sync.Mutex
	last int64
}

// NewLocalStore creates a store rooted at dir. The directory is created on
// first write.
func NewLocalStore(dir, frameExt, artifactExt string) *LocalStore {
	if frameExt == "" {
		frameExt = DefaultFrameExt
	}
	if artifactExt == "" {
		artifactExt = DefaultArtifactExt
	}
	return &LocalStore{
		dir:         dir,
		frameExt:    strings.TrimPrefix(frameExt, "."),
		artifactExt: strings.TrimPrefix(artifactExt, "."),
	}
}

// WriteFrame persists data atomically under a fresh frame name.
func (s *LocalStore) WriteFrame(data []byte) (domain.FrameHandle, error) {
	if err := s.ensureDir(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, fmt.Sprintf("frame_%d.%s", s.stamp(), s.frameExt))
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%w: write frame: %v", domain.ErrPersistence, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%w: rename frame: %v", domain.ErrPersistence, err)
	}
	return domain.FrameHandle(path), nil
}

// NewArtifact returns a fresh output path. The file itself is created by
// the encoder.
func (s *LocalStore) NewArtifact() (domain.ArtifactHandle, error) {
	if err := s.ensureDir(); err != nil {
		return "", err
	}
	name := fmt.Sprintf("out_%d.%s", s.stamp(), s.artifactExt)
	return domain.ArtifactHandle(filepath.Join(s.dir, name)), nil
}

// Remove deletes path. A file that is already gone is not an error.
func (s *LocalStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}

// Size returns the size of the file at path.
func (s *LocalStore) Size(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Dir returns the temp directory.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create temp dir: %v", domain.ErrPersistence, err)
	}
	return nil
}

// stamp returns the current time in nanoseconds, bumped past the previous
// stamp when the clock has not advanced.
func (s *LocalStore) stamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UnixNano()
	if now <= s.last {
		now = s.last + 1
	}
	s.last = now
	return now
}
