package driven

import (
	"context"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

// MediaStore defines the driven port for the content library index.
// The files themselves live on disk; this store only tracks metadata.
type MediaStore interface {
	Insert(ctx context.Context, asset model.MediaAsset) error

	// Get returns (nil, nil) when no such asset exists.
	Get(ctx context.Context, id string) (*model.MediaAsset, error)

	// List returns all assets, newest upload first.
	List(ctx context.Context) ([]model.MediaAsset, error)

	// Delete removes the index entry. Returns an error if it does not exist.
	Delete(ctx context.Context, id string) error
}
