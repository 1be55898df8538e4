package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
	"github.com/adiwicaksono/blogpanel/internal/domain/port/driven"
)

// CredentialChecker is the slice of the credential lifecycle the sync
// orchestrator depends on.
type CredentialChecker interface {
	EnsureValid(ctx context.Context, principalID string) (*model.Credential, error)
}

// SyncService is the read-through orchestrator between the upstream
// platform and the local mirror. Reads try the upstream first and
// write-through every entity they see; when the upstream fails
// transiently (or throttles), the mirror serves a degraded response
// tagged with its source. Writes go upstream first and update the mirror
// only after the upstream accepted them.
type SyncService struct {
	auth     CredentialChecker
	client   driven.ContentClient
	blogs    driven.BlogStore
	posts    driven.PostStore
	pages    driven.PageStore
	comments driven.CommentStore
	renderer *Renderer
	logger   *slog.Logger
}

// NewSyncService creates a SyncService over the given ports.
func NewSyncService(
	auth CredentialChecker,
	client driven.ContentClient,
	blogs driven.BlogStore,
	posts driven.PostStore,
	pages driven.PageStore,
	comments driven.CommentStore,
	renderer *Renderer,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		auth:     auth,
		client:   client,
		blogs:    blogs,
		posts:    posts,
		pages:    pages,
		comments: comments,
		renderer: renderer,
		logger:   logger,
	}
}

// Result is a list read tagged with where it was served from.
type Result[T any] struct {
	Items  []T
	Source model.Source
}

// ItemResult is a single-entity read tagged with where it was served from.
type ItemResult[T any] struct {
	Item   *T
	Source model.Source
}

// fetchThrough runs one read-through list cycle: validate the credential,
// try the live call, mirror every entity it returned, and fall back to
// the mirror only for transient or rate-limit failures with a non-empty
// mirror. Credential errors and genuine not-founds propagate untouched.
func fetchThrough[T any](
	s *SyncService,
	ctx context.Context,
	principalID, op string,
	live func() ([]T, error),
	mirror func() ([]T, error),
	upsert func(T) error,
) (*Result[T], error) {
	items, liveErr := func() ([]T, error) {
		if _, err := s.auth.EnsureValid(ctx, principalID); err != nil {
			return nil, err
		}
		return live()
	}()

	if liveErr == nil {
		for _, item := range items {
			if err := upsert(item); err != nil {
				// The mirror is an optimization; a failed write-through
				// must not fail the live read.
				s.logger.Error("mirror write-through failed",
					"op", op, "principal_id", principalID, "error", err)
			}
		}
		return &Result[T]{Items: items, Source: model.SourceLive}, nil
	}

	if !driven.FallbackEligible(liveErr) {
		return nil, liveErr
	}

	cached, err := mirror()
	if err != nil {
		s.logger.Error("mirror read failed during fallback",
			"op", op, "principal_id", principalID, "error", err)
		return nil, liveErr
	}
	if len(cached) == 0 {
		// An empty mirror is indistinguishable from never-synced data;
		// surfacing the upstream failure is more honest than an empty 200.
		return nil, liveErr
	}

	s.logger.Warn("serving mirror fallback",
		"op", op, "principal_id", principalID,
		"items", len(cached), "upstream_error", liveErr)

	return &Result[T]{Items: cached, Source: model.SourceCache}, nil
}

// fetchOneThrough is fetchThrough for single-entity reads. A missing
// mirror entry during fallback surfaces the upstream failure, and an
// upstream not-found is never masked by stale mirror data.
func fetchOneThrough[T any](
	s *SyncService,
	ctx context.Context,
	principalID, op string,
	live func() (*T, error),
	mirror func() (*T, error),
	upsert func(T) error,
) (*ItemResult[T], error) {
	item, liveErr := func() (*T, error) {
		if _, err := s.auth.EnsureValid(ctx, principalID); err != nil {
			return nil, err
		}
		return live()
	}()

	if liveErr == nil {
		if err := upsert(*item); err != nil {
			s.logger.Error("mirror write-through failed",
				"op", op, "principal_id", principalID, "error", err)
		}
		return &ItemResult[T]{Item: item, Source: model.SourceLive}, nil
	}

	if !driven.FallbackEligible(liveErr) {
		return nil, liveErr
	}

	cached, err := mirror()
	if err != nil {
		s.logger.Error("mirror read failed during fallback",
			"op", op, "principal_id", principalID, "error", err)
		return nil, liveErr
	}
	if cached == nil {
		return nil, liveErr
	}

	s.logger.Warn("serving mirror fallback",
		"op", op, "principal_id", principalID, "upstream_error", liveErr)

	return &ItemResult[T]{Item: cached, Source: model.SourceCache}, nil
}

// ListBlogs returns the principal's blogs, live when possible.
func (s *SyncService) ListBlogs(ctx context.Context, principalID string) (*Result[model.Blog], error) {
	return fetchThrough(s, ctx, principalID, "list blogs",
		func() ([]model.Blog, error) { return s.client.ListBlogs(ctx, principalID) },
		func() ([]model.Blog, error) { return s.blogs.ListByPrincipal(ctx, principalID) },
		func(b model.Blog) error { return s.blogs.Upsert(ctx, b) },
	)
}

// GetBlog returns one blog, live when possible.
func (s *SyncService) GetBlog(ctx context.Context, principalID, blogID string) (*ItemResult[model.Blog], error) {
	return fetchOneThrough(s, ctx, principalID, "get blog",
		func() (*model.Blog, error) { return s.client.GetBlog(ctx, principalID, blogID) },
		func() (*model.Blog, error) { return s.blogs.Get(ctx, principalID, blogID) },
		func(b model.Blog) error { return s.blogs.Upsert(ctx, b) },
	)
}

// ListPosts returns posts for a blog, live when possible. The filter
// applies to both the live call and the mirror fallback.
func (s *SyncService) ListPosts(ctx context.Context, principalID, blogID string, filter driven.PostFilter) (*Result[model.Post], error) {
	return fetchThrough(s, ctx, principalID, "list posts",
		func() ([]model.Post, error) { return s.client.ListPosts(ctx, principalID, blogID, filter) },
		func() ([]model.Post, error) { return s.posts.ListByBlog(ctx, principalID, blogID, filter.Statuses) },
		func(p model.Post) error { return s.posts.Upsert(ctx, p) },
	)
}

// GetPost returns one post, live when possible.
func (s *SyncService) GetPost(ctx context.Context, principalID, blogID, postID string) (*ItemResult[model.Post], error) {
	return fetchOneThrough(s, ctx, principalID, "get post",
		func() (*model.Post, error) { return s.client.GetPost(ctx, principalID, blogID, postID) },
		func() (*model.Post, error) { return s.posts.Get(ctx, principalID, postID) },
		func(p model.Post) error { return s.posts.Upsert(ctx, p) },
	)
}

// CreatePost renders the draft to sanitized HTML, publishes it upstream,
// and mirrors the created post. No fallback: writes need the upstream.
func (s *SyncService) CreatePost(ctx context.Context, principalID, blogID string, draft model.PostDraft) (*model.Post, error) {
	if err := s.prepareDraft(&draft.Content, draft.Format); err != nil {
		return nil, err
	}
	if _, err := s.auth.EnsureValid(ctx, principalID); err != nil {
		return nil, err
	}

	post, err := s.client.CreatePost(ctx, principalID, blogID, draft)
	if err != nil {
		return nil, err
	}

	if err := s.posts.Upsert(ctx, *post); err != nil {
		s.logger.Error("mirror write-through failed",
			"op", "create post", "principal_id", principalID, "error", err)
	}

	return post, nil
}

// UpdatePost renders the draft, updates the post upstream, and refreshes
// the mirror entry.
func (s *SyncService) UpdatePost(ctx context.Context, principalID, blogID, postID string, draft model.PostDraft) (*model.Post, error) {
	if err := s.prepareDraft(&draft.Content, draft.Format); err != nil {
		return nil, err
	}
	if _, err := s.auth.EnsureValid(ctx, principalID); err != nil {
		return nil, err
	}

	post, err := s.client.UpdatePost(ctx, principalID, blogID, postID, draft)
	if err != nil {
		return nil, err
	}

	if err := s.posts.Upsert(ctx, *post); err != nil {
		s.logger.Error("mirror write-through failed",
			"op", "update post", "principal_id", principalID, "error", err)
	}

	return post, nil
}

// DeletePost deletes the post upstream, then drops the mirror entry.
func (s *SyncService) DeletePost(ctx context.Context, principalID, blogID, postID string) error {
	if _, err := s.auth.EnsureValid(ctx, principalID); err != nil {
		return err
	}

	if err := s.client.DeletePost(ctx, principalID, blogID, postID); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, principalID, postID); err != nil {
		s.logger.Error("mirror delete failed",
			"op", "delete post", "principal_id", principalID, "error", err)
	}

	return nil
}

// ListPages returns static pages for a blog, live when possible.
func (s *SyncService) ListPages(ctx context.Context, principalID, blogID string) (*Result[model.Page], error) {
	return fetchThrough(s, ctx, principalID, "list pages",
		func() ([]model.Page, error) { return s.client.ListPages(ctx, principalID, blogID) },
		func() ([]model.Page, error) { return s.pages.ListByBlog(ctx, principalID, blogID) },
		func(p model.Page) error { return s.pages.Upsert(ctx, p) },
	)
}

// GetPage returns one static page, live when possible.
func (s *SyncService) GetPage(ctx context.Context, principalID, blogID, pageID string) (*ItemResult[model.Page], error) {
	return fetchOneThrough(s, ctx, principalID, "get page",
		func() (*model.Page, error) { return s.client.GetPage(ctx, principalID, blogID, pageID) },
		func() (*model.Page, error) { return s.pages.Get(ctx, principalID, pageID) },
		func(p model.Page) error { return s.pages.Upsert(ctx, p) },
	)
}

// CreatePage renders the draft, creates the page upstream, and mirrors it.
func (s *SyncService) CreatePage(ctx context.Context, principalID, blogID string, draft model.PageDraft) (*model.Page, error) {
	if err := s.prepareDraft(&draft.Content, draft.Format); err != nil {
		return nil, err
	}
	if _, err := s.auth.EnsureValid(ctx, principalID); err != nil {
		return nil, err
	}

	page, err := s.client.CreatePage(ctx, principalID, blogID, draft)
	if err != nil {
		return nil, err
	}

	if err := s.pages.Upsert(ctx, *page); err != nil {
		s.logger.Error("mirror write-through failed",
			"op", "create page", "principal_id", principalID, "error", err)
	}

	return page, nil
}

// UpdatePage renders the draft, updates the page upstream, and refreshes
// the mirror entry.
func (s *SyncService) UpdatePage(ctx context.Context, principalID, blogID, pageID string, draft model.PageDraft) (*model.Page, error) {
	if err := s.prepareDraft(&draft.Content, draft.Format); err != nil {
		return nil, err
	}
	if _, err := s.auth.EnsureValid(ctx, principalID); err != nil {
		return nil, err
	}

	page, err := s.client.UpdatePage(ctx, principalID, blogID, pageID, draft)
	if err != nil {
		return nil, err
	}

	if err := s.pages.Upsert(ctx, *page); err != nil {
		s.logger.Error("mirror write-through failed",
			"op", "update page", "principal_id", principalID, "error", err)
	}

	return page, nil
}

// DeletePage deletes the page upstream, then drops the mirror entry.
func (s *SyncService) DeletePage(ctx context.Context, principalID, blogID, pageID string) error {
	if _, err := s.auth.EnsureValid(ctx, principalID); err != nil {
		return err
	}

	if err := s.client.DeletePage(ctx, principalID, blogID, pageID); err != nil {
		return err
	}

	if err := s.pages.Delete(ctx, principalID, pageID); err != nil {
		s.logger.Error("mirror delete failed",
			"op", "delete page", "principal_id", principalID, "error", err)
	}

	return nil
}

// ListComments returns comments for the blog (optionally one post), live
// when possible.
func (s *SyncService) ListComments(ctx context.Context, principalID, blogID, postID string) (*Result[model.Comment], error) {
	return fetchThrough(s, ctx, principalID, "list comments",
		func() ([]model.Comment, error) { return s.client.ListComments(ctx, principalID, blogID, postID) },
		func() ([]model.Comment, error) { return s.comments.ListByBlog(ctx, principalID, blogID, postID) },
		func(c model.Comment) error { return s.comments.Upsert(ctx, c) },
	)
}

// ApproveComment publishes a pending comment upstream and refreshes the
// mirror entry.
func (s *SyncService) ApproveComment(ctx context.Context, principalID, blogID, postID, commentID string) (*model.Comment, error) {
	return s.moderateComment(ctx, principalID, "approve comment", func() (*model.Comment, error) {
		return s.client.ApproveComment(ctx, principalID, blogID, postID, commentID)
	})
}

// MarkCommentSpam flags a comment as spam upstream and refreshes the
// mirror entry.
func (s *SyncService) MarkCommentSpam(ctx context.Context, principalID, blogID, postID, commentID string) (*model.Comment, error) {
	return s.moderateComment(ctx, principalID, "mark comment spam", func() (*model.Comment, error) {
		return s.client.MarkCommentSpam(ctx, principalID, blogID, postID, commentID)
	})
}

func (s *SyncService) moderateComment(ctx context.Context, principalID, op string, call func() (*model.Comment, error)) (*model.Comment, error) {
	if _, err := s.auth.EnsureValid(ctx, principalID); err != nil {
		return nil, err
	}

	comment, err := call()
	if err != nil {
		return nil, err
	}

	if err := s.comments.Upsert(ctx, *comment); err != nil {
		s.logger.Error("mirror write-through failed",
			"op", op, "principal_id", principalID, "error", err)
	}

	return comment, nil
}

// DeleteComment deletes the comment upstream, then drops the mirror entry.
func (s *SyncService) DeleteComment(ctx context.Context, principalID, blogID, postID, commentID string) error {
	if _, err := s.auth.EnsureValid(ctx, principalID); err != nil {
		return err
	}

	if err := s.client.DeleteComment(ctx, principalID, blogID, postID, commentID); err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, principalID, commentID); err != nil {
		s.logger.Error("mirror delete failed",
			"op", "delete comment", "principal_id", principalID, "error", err)
	}

	return nil
}

// prepareDraft rewrites draft content in place to sanitized HTML.
func (s *SyncService) prepareDraft(content *string, format model.ContentFormat) error {
	rendered, err := s.renderer.Render(*content, format)
	if err != nil {
		return fmt.Errorf("prepare draft content: %w", err)
	}
	*content = rendered
	return nil
}
