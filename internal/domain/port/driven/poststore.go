package driven

import (
	"context"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

// PostStore defines the driven port for the post mirror.
type PostStore interface {
	Upsert(ctx context.Context, post model.Post) error

	// Get returns (nil, nil) when no mirror entry exists.
	Get(ctx context.Context, principalID, externalID string) (*model.Post, error)

	// ListByBlog returns mirrored posts for the blog, newest published
	// first, optionally restricted to the given statuses.
	ListByBlog(ctx context.Context, principalID, blogID string, statuses []model.PostStatus) ([]model.Post, error)

	// Delete removes a mirror entry. Missing entries are not an error:
	// the mirror is an optimization, not the source of truth.
	Delete(ctx context.Context, principalID, externalID string) error
}
