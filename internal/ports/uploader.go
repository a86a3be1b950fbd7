package ports

import (
	"context"

	"github.com/bft-labs/frameship/internal/domain"
)

// Uploader transmits an encoded artifact to the remote store.
// The local file is left in place; the caller owns its removal.
type Uploader interface {
	Upload(ctx context.Context, artifact domain.ArtifactHandle) error
}
