// Package retention bounds the disk footprint of consumed frame files.
//
// Under the delete-when-exceed policy every frame handed to the encoder is
// registered with a Tracker. Once the running total exceeds the byte budget
// the oldest files are deleted until the total fits again.
package retention

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bft-labs/frameship/internal/domain"
	"github.com/bft-labs/frameship/pkg/log"
)

// ErrEvictionHalted is returned by Enforce when a retained file could not be
// deleted. The file stays tracked and eviction resumes on the next call.
var ErrEvictionHalted = errors.New("retention: eviction halted")

// Remover deletes a file by path.
type Remover interface {
	Remove(path string) error
}

// Tracker is a FIFO of retained files with a running byte total.
// Mutations come from a single goroutine; reads may come from any.
type Tracker struct {
	mu     sync.Mutex
	files  []domain.RetainedFile
	total  int64
	budget int64

	remover Remover
	logger  log.Logger
}

// New creates a tracker that evicts once the total exceeds budget bytes.
func New(budget int64, remover Remover, logger log.Logger) *Tracker {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Tracker{
		budget:  budget,
		remover: remover,
		logger:  logger,
	}
}

// Track appends f to the tail of the FIFO.
func (t *Tracker) Track(f domain.RetainedFile) {
	t.mu.Lock()
	t.files = append(t.files, f)
	t.total += f.Size
	t.mu.Unlock()
}

// Enforce evicts the oldest files while the total exceeds the budget.
// It returns the number of files deleted. If a delete fails, eviction stops
// with that file still tracked and the error wraps ErrEvictionHalted.
func (t *Tracker) Enforce() (int, error) {
	evicted := 0
	for {
		t.mu.Lock()
		if t.total <= t.budget || len(t.files) == 0 {
			t.mu.Unlock()
			return evicted, nil
		}
		oldest := t.files[0]
		t.mu.Unlock()

		if err := t.remover.Remove(oldest.Handle.Path()); err != nil {
			t.logger.Warn("retention eviction halted",
				log.String("file", oldest.Handle.Name()),
				log.Int64("retained_bytes", t.Total()),
				log.Int64("budget_bytes", t.budget),
				log.Err(err),
			)
			return evicted, fmt.Errorf("%w: %s: %v", ErrEvictionHalted, oldest.Handle.Name(), err)
		}

		t.mu.Lock()
		t.files[0] = domain.RetainedFile{}
		t.files = t.files[1:]
		t.total -= oldest.Size
		t.mu.Unlock()
		evicted++

		t.logger.Debug("evicted retained frame",
			log.String("file", oldest.Handle.Name()),
			log.Int64("size", oldest.Size),
		)
	}
}

// Total returns the sum of sizes of all tracked files.
func (t *Tracker) Total() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Len returns the number of tracked files.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.files)
}

// Budget returns the configured byte budget.
func (t *Tracker) Budget() int64 {
	return t.budget
}

// Files returns a copy of the tracked files, oldest first.
func (t *Tracker) Files() []domain.RetainedFile {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.RetainedFile, len(t.files))
	copy(out, t.files)
	return out
}
