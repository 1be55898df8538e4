package driven

import (
	"context"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

// PostFilter narrows a post list call. A nil/empty Statuses slice means
// the adapter's default (live and draft). MaxResults <= 0 means the
// adapter's default page size.
type PostFilter struct {
	Statuses   []model.PostStatus
	MaxResults int
}

// ContentClient defines the driven port for the upstream blogging
// platform API. Every operation takes the principal id explicitly; the
// caller must have run the credential lifecycle check first, and the
// adapter resolves the bearer token for that principal itself. Reads are
// idempotent; create/update/delete are not (no idempotency keys upstream).
// Failures are classified into UpstreamError kinds, or
// ErrReauthorizationRequired where the platform signals a revoked grant.
type ContentClient interface {
	ListBlogs(ctx context.Context, principalID string) ([]model.Blog, error)
	GetBlog(ctx context.Context, principalID, blogID string) (*model.Blog, error)

	ListPosts(ctx context.Context, principalID, blogID string, filter PostFilter) ([]model.Post, error)
	GetPost(ctx context.Context, principalID, blogID, postID string) (*model.Post, error)
	CreatePost(ctx context.Context, principalID, blogID string, draft model.PostDraft) (*model.Post, error)
	UpdatePost(ctx context.Context, principalID, blogID, postID string, draft model.PostDraft) (*model.Post, error)
	DeletePost(ctx context.Context, principalID, blogID, postID string) error

	ListPages(ctx context.Context, principalID, blogID string) ([]model.Page, error)
	GetPage(ctx context.Context, principalID, blogID, pageID string) (*model.Page, error)
	CreatePage(ctx context.Context, principalID, blogID string, draft model.PageDraft) (*model.Page, error)
	UpdatePage(ctx context.Context, principalID, blogID, pageID string, draft model.PageDraft) (*model.Page, error)
	DeletePage(ctx context.Context, principalID, blogID, pageID string) error

	// ListComments returns comments for the blog; postID narrows to one
	// post when non-empty.
	ListComments(ctx context.Context, principalID, blogID, postID string) ([]model.Comment, error)
	ApproveComment(ctx context.Context, principalID, blogID, postID, commentID string) (*model.Comment, error)
	MarkCommentSpam(ctx context.Context, principalID, blogID, postID, commentID string) (*model.Comment, error)
	DeleteComment(ctx context.Context, principalID, blogID, postID, commentID string) error
}
