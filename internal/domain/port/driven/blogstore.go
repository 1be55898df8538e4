package driven

import (
	"context"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

// BlogStore defines the driven port for the blog mirror. Writes are
// upserts keyed by (external id, principal id); reads serve degraded-mode
// fallback when the upstream is unavailable.
type BlogStore interface {
	Upsert(ctx context.Context, blog model.Blog) error

	// Get returns (nil, nil) when no mirror entry exists.
	Get(ctx context.Context, principalID, externalID string) (*model.Blog, error)

	// ListByPrincipal returns all mirrored blogs for the principal,
	// ordered by name.
	ListByPrincipal(ctx context.Context, principalID string) ([]model.Blog, error)
}
