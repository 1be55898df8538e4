package driven

import (
	"context"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

// PageStore defines the driven port for the page mirror.
type PageStore interface {
	Upsert(ctx context.Context, page model.Page) error

	// Get returns (nil, nil) when no mirror entry exists.
	Get(ctx context.Context, principalID, externalID string) (*model.Page, error)

	// ListByBlog returns mirrored pages for the blog, newest published first.
	ListByBlog(ctx context.Context, principalID, blogID string) ([]model.Page, error)

	// Delete removes a mirror entry. Missing entries are not an error.
	Delete(ctx context.Context, principalID, externalID string) error
}
