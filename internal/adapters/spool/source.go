// Package spool implements a frame source over a drop directory.
//
// An external producer (camera daemon, motion detector, test harness)
// writes image files into the directory. Each file is delivered once it has
// stopped changing for the debounce interval, then removed from the spool.
package spool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/frameship/internal/ports"
	"github.com/bft-labs/frameship/pkg/log"
)

// ErrClosed is returned by TryGetFrame after Close.
var ErrClosed = errors.New("spool source closed")

// Config controls which files are picked up and when.
type Config struct {
	// Extensions lists accepted file extensions without the dot.
	// Default: jpg, jpeg, png
	Extensions []string

	// Debounce is how long a file must stay unchanged before delivery.
	// Default: 100ms
	Debounce time.Duration
}

// Source implements ports.FrameSource by watching a directory with fsnotify.
type Source struct {
	dir      string
	exts     map[string]bool
	debounce time.Duration
	logger   log.Logger

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]time.Time
	ready   []string
	notify  chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

// Open starts watching dir, creating it if needed. Files already present
// are queued immediately in name order.
func Open(dir string, cfg Config, logger log.Logger) (*Source, error) {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 100 * time.Millisecond
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{"jpg", "jpeg", "png"}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	s := &Source{
		dir:      dir,
		exts:     make(map[string]bool, len(cfg.Extensions)),
		debounce: cfg.Debounce,
		logger:   logger,
		watcher:  watcher,
		pending:  make(map[string]time.Time),
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, e := range cfg.Extensions {
		s.exts[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}

	if err := s.scan(); err != nil {
		watcher.Close()
		return nil, err
	}

	go s.run()
	return s, nil
}

// scan queues files that were in the spool before the watch began.
func (s *Source) scan() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read spool dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && s.accept(e.Name()) {
			names = append(names, filepath.Join(s.dir, e.Name()))
		}
	}
	sort.Strings(names)

	s.mu.Lock()
	s.ready = append(s.ready, names...)
	s.mu.Unlock()
	if len(names) > 0 {
		s.signal()
		s.logger.Info("spool backlog queued", log.Int("files", len(names)))
	}
	return nil
}

func (s *Source) accept(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return s.exts[ext]
}

func (s *Source) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !s.accept(filepath.Base(event.Name)) {
				continue
			}
			s.mu.Lock()
			switch {
			case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
				s.pending[event.Name] = time.Now()
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(s.pending, event.Name)
			}
			s.mu.Unlock()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("spool watcher error", log.Err(err))

		case now := <-ticker.C:
			s.promote(now)
		}
	}
}

// promote moves files that have settled from pending to ready.
func (s *Source) promote(now time.Time) {
	s.mu.Lock()
	var settled []string
	for name, last := range s.pending {
		if now.Sub(last) >= s.debounce {
			settled = append(settled, name)
			delete(s.pending, name)
		}
	}
	sort.Strings(settled)
	s.ready = append(s.ready, settled...)
	s.mu.Unlock()

	if len(settled) > 0 {
		s.signal()
	}
}

func (s *Source) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// TryGetFrame returns the contents of the oldest settled file and removes
// it from the spool.
func (s *Source) TryGetFrame(ctx context.Context, timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		data, ok, err := s.next()
		if err != nil || ok {
			return data, err
		}

		select {
		case <-s.notify:
		case <-timer.C:
			return nil, ports.ErrNoFrame
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.done:
			return nil, ErrClosed
		}
	}
}

// next pops ready files until one can be read. ok is false when the ready
// list is exhausted.
func (s *Source) next() ([]byte, bool, error) {
	for {
		s.mu.Lock()
		if len(s.ready) == 0 {
			s.mu.Unlock()
			return nil, false, nil
		}
		path := s.ready[0]
		s.ready = s.ready[1:]
		more := len(s.ready) > 0
		s.mu.Unlock()

		if more {
			s.signal()
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, false, fmt.Errorf("read spooled frame %s: %w", filepath.Base(path), err)
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to remove spooled frame", log.String("file", filepath.Base(path)), log.Err(err))
		}
		if len(data) == 0 {
			continue
		}
		return data, true, nil
	}
}

// Pending returns the number of files seen but not yet delivered.
func (s *Source) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending) + len(s.ready)
}

// Close stops watching. Files still in the spool are left in place.
func (s *Source) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.watcher.Close()
		<-s.done
	})
	return err
}
