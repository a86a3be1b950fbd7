package ports

import (
	"context"

	"github.com/bft-labs/frameship/internal/domain"
)

// StatusRepository persists the pipeline's last stats snapshot so that
// operators can inspect a stopped run.
type StatusRepository interface {
	// Load returns the last saved snapshot, or a zero value if none exists.
	Load(ctx context.Context) (domain.Stats, error)

	// Save persists the snapshot atomically.
	Save(ctx context.Context, stats domain.Stats) error
}
