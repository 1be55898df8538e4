package driven

import (
	"context"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

// CommentStore defines the driven port for the comment mirror.
type CommentStore interface {
	Upsert(ctx context.Context, comment model.Comment) error

	// Get returns (nil, nil) when no mirror entry exists.
	Get(ctx context.Context, principalID, externalID string) (*model.Comment, error)

	// ListByBlog returns mirrored comments for the blog, newest published
	// first. When postID is non-empty the result is restricted to that post.
	ListByBlog(ctx context.Context, principalID, blogID, postID string) ([]model.Comment, error)

	// Delete removes a mirror entry. Missing entries are not an error.
	Delete(ctx context.Context, principalID, externalID string) error
}
