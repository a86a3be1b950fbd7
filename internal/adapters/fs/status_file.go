package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bft-labs/frameship/internal/domain"
)

// StatusFileName is the name of the snapshot written at stop.
const StatusFileName = "status.json"

// StatusFile implements ports.StatusRepository using a JSON file.
type StatusFile struct {
	dir string
}

// NewStatusFile creates a StatusFile for the given directory.
func NewStatusFile(dir string) *StatusFile {
	return &StatusFile{dir: dir}
}

// Load retrieves the last saved snapshot from disk.
// Returns a zero snapshot and nil error if no status file exists.
func (r *StatusFile) Load(ctx context.Context) (domain.Stats, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Stats{}, nil
		}
		return domain.Stats{}, err
	}

	var stats domain.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return domain.Stats{}, err
	}

	return stats, nil
}

// Save persists the snapshot atomically (temp file, then rename).
func (r *StatusFile) Save(ctx context.Context, stats domain.Stats) error {
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	path := r.Path()
	tmp := path + ".tmp"

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Path returns the full path to the status file.
func (r *StatusFile) Path() string {
	return filepath.Join(r.dir, StatusFileName)
}
