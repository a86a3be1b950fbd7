package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bft-labs/frameship/internal/domain"
)

// DirUploader implements ports.Uploader by copying artifacts into a
// destination directory, typically a network mount. Each copy lands under
// a temp name and is renamed into place so readers never see partial files.
type DirUploader struct {
	dest   string
	prefix string
}

// NewDirUploader creates an uploader writing <dest>/<prefix><artifact name>.
// The prefix may contain slashes to form subdirectories.
func NewDirUploader(dest, prefix string) *DirUploader {
	return &DirUploader{dest: dest, prefix: prefix}
}

// Upload copies the artifact into the destination directory.
func (u *DirUploader) Upload(ctx context.Context, artifact domain.ArtifactHandle) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(u.dest, filepath.FromSlash(u.prefix+artifact.Name()))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	src, err := os.Open(artifact.Path())
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("copy artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// Dest returns the destination directory.
func (u *DirUploader) Dest() string {
	return u.dest
}
