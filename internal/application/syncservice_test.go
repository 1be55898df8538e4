package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
	"github.com/adiwicaksono/blogpanel/internal/domain/port/driven"
)

// allowAuth is a CredentialChecker that always succeeds (or always fails).
type allowAuth struct{ err error }

func (a allowAuth) EnsureValid(ctx context.Context, principalID string) (*model.Credential, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &model.Credential{PrincipalID: principalID, AccessToken: "tok"}, nil
}

func transientErr() error {
	return &driven.UpstreamError{Kind: driven.UpstreamTransient, Op: "test", StatusCode: 503, Err: errors.New("unavailable")}
}

func notFoundErr() error {
	return &driven.UpstreamError{Kind: driven.UpstreamNotFound, Op: "test", StatusCode: 404, Err: errors.New("gone")}
}

// fakeUpstream implements ContentClient from in-memory slices; failWith
// short-circuits every operation when set.
type fakeUpstream struct {
	failWith error

	blogs    []model.Blog
	posts    []model.Post
	pages    []model.Page
	comments []model.Comment

	lastDraftContent string
}

func (f *fakeUpstream) ListBlogs(ctx context.Context, principalID string) ([]model.Blog, error) {
	return f.blogs, f.failWith
}

func (f *fakeUpstream) GetBlog(ctx context.Context, principalID, blogID string) (*model.Blog, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, b := range f.blogs {
		if b.ExternalID == blogID {
			return &b, nil
		}
	}
	return nil, notFoundErr()
}

func (f *fakeUpstream) ListPosts(ctx context.Context, principalID, blogID string, filter driven.PostFilter) ([]model.Post, error) {
	return f.posts, f.failWith
}

func (f *fakeUpstream) GetPost(ctx context.Context, principalID, blogID, postID string) (*model.Post, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, p := range f.posts {
		if p.ExternalID == postID {
			return &p, nil
		}
	}
	return nil, notFoundErr()
}

func (f *fakeUpstream) CreatePost(ctx context.Context, principalID, blogID string, draft model.PostDraft) (*model.Post, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.lastDraftContent = draft.Content
	post := model.Post{ExternalID: "created-post", PrincipalID: principalID, BlogID: blogID, Title: draft.Title, Content: draft.Content}
	f.posts = append(f.posts, post)
	return &post, nil
}

func (f *fakeUpstream) UpdatePost(ctx context.Context, principalID, blogID, postID string, draft model.PostDraft) (*model.Post, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.lastDraftContent = draft.Content
	post := model.Post{ExternalID: postID, PrincipalID: principalID, BlogID: blogID, Title: draft.Title, Content: draft.Content}
	return &post, nil
}

func (f *fakeUpstream) DeletePost(ctx context.Context, principalID, blogID, postID string) error {
	return f.failWith
}

func (f *fakeUpstream) ListPages(ctx context.Context, principalID, blogID string) ([]model.Page, error) {
	return f.pages, f.failWith
}

func (f *fakeUpstream) GetPage(ctx context.Context, principalID, blogID, pageID string) (*model.Page, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, p := range f.pages {
		if p.ExternalID == pageID {
			return &p, nil
		}
	}
	return nil, notFoundErr()
}

func (f *fakeUpstream) CreatePage(ctx context.Context, principalID, blogID string, draft model.PageDraft) (*model.Page, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.lastDraftContent = draft.Content
	page := model.Page{ExternalID: "created-page", PrincipalID: principalID, BlogID: blogID, Title: draft.Title, Content: draft.Content}
	return &page, nil
}

func (f *fakeUpstream) UpdatePage(ctx context.Context, principalID, blogID, pageID string, draft model.PageDraft) (*model.Page, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	page := model.Page{ExternalID: pageID, PrincipalID: principalID, BlogID: blogID, Title: draft.Title, Content: draft.Content}
	return &page, nil
}

func (f *fakeUpstream) DeletePage(ctx context.Context, principalID, blogID, pageID string) error {
	return f.failWith
}

func (f *fakeUpstream) ListComments(ctx context.Context, principalID, blogID, postID string) ([]model.Comment, error) {
	return f.comments, f.failWith
}

func (f *fakeUpstream) ApproveComment(ctx context.Context, principalID, blogID, postID, commentID string) (*model.Comment, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return &model.Comment{ExternalID: commentID, PrincipalID: principalID, BlogID: blogID, PostID: postID, Status: model.CommentStatusLive}, nil
}

func (f *fakeUpstream) MarkCommentSpam(ctx context.Context, principalID, blogID, postID, commentID string) (*model.Comment, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return &model.Comment{ExternalID: commentID, PrincipalID: principalID, BlogID: blogID, PostID: postID, Status: model.CommentStatusSpam}, nil
}

func (f *fakeUpstream) DeleteComment(ctx context.Context, principalID, blogID, postID, commentID string) error {
	return f.failWith
}

// Compile-time interface satisfaction check.
var _ driven.ContentClient = (*fakeUpstream)(nil)

// In-memory mirror stores keyed by external id.

type memBlogStore struct {
	items map[string]model.Blog
}

func newMemBlogStore() *memBlogStore { return &memBlogStore{items: map[string]model.Blog{}} }

func (s *memBlogStore) Upsert(ctx context.Context, b model.Blog) error {
	s.items[b.ExternalID] = b
	return nil
}

func (s *memBlogStore) Get(ctx context.Context, principalID, externalID string) (*model.Blog, error) {
	if b, ok := s.items[externalID]; ok {
		return &b, nil
	}
	return nil, nil
}

func (s *memBlogStore) ListByPrincipal(ctx context.Context, principalID string) ([]model.Blog, error) {
	var out []model.Blog
	for _, b := range s.items {
		out = append(out, b)
	}
	return out, nil
}

type memPostStore struct {
	items     map[string]model.Post
	upsertErr error
}

func newMemPostStore() *memPostStore { return &memPostStore{items: map[string]model.Post{}} }

func (s *memPostStore) Upsert(ctx context.Context, p model.Post) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.items[p.ExternalID] = p
	return nil
}

func (s *memPostStore) Get(ctx context.Context, principalID, externalID string) (*model.Post, error) {
	if p, ok := s.items[externalID]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *memPostStore) ListByBlog(ctx context.Context, principalID, blogID string, statuses []model.PostStatus) ([]model.Post, error) {
	var out []model.Post
	for _, p := range s.items {
		out = append(out, p)
	}
	return out, nil
}

func (s *memPostStore) Delete(ctx context.Context, principalID, externalID string) error {
	delete(s.items, externalID)
	return nil
}

type memPageStore struct {
	items map[string]model.Page
}

func newMemPageStore() *memPageStore { return &memPageStore{items: map[string]model.Page{}} }

func (s *memPageStore) Upsert(ctx context.Context, p model.Page) error {
	s.items[p.ExternalID] = p
	return nil
}

func (s *memPageStore) Get(ctx context.Context, principalID, externalID string) (*model.Page, error) {
	if p, ok := s.items[externalID]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *memPageStore) ListByBlog(ctx context.Context, principalID, blogID string) ([]model.Page, error) {
	var out []model.Page
	for _, p := range s.items {
		out = append(out, p)
	}
	return out, nil
}

func (s *memPageStore) Delete(ctx context.Context, principalID, externalID string) error {
	delete(s.items, externalID)
	return nil
}

type memCommentStore struct {
	items map[string]model.Comment
}

func newMemCommentStore() *memCommentStore { return &memCommentStore{items: map[string]model.Comment{}} }

func (s *memCommentStore) Upsert(ctx context.Context, c model.Comment) error {
	s.items[c.ExternalID] = c
	return nil
}

func (s *memCommentStore) Get(ctx context.Context, principalID, externalID string) (*model.Comment, error) {
	if c, ok := s.items[externalID]; ok {
		return &c, nil
	}
	return nil, nil
}

func (s *memCommentStore) ListByBlog(ctx context.Context, principalID, blogID, postID string) ([]model.Comment, error) {
	var out []model.Comment
	for _, c := range s.items {
		out = append(out, c)
	}
	return out, nil
}

func (s *memCommentStore) Delete(ctx context.Context, principalID, externalID string) error {
	delete(s.items, externalID)
	return nil
}

type syncFixture struct {
	svc      *SyncService
	upstream *fakeUpstream
	blogs    *memBlogStore
	posts    *memPostStore
	pages    *memPageStore
	comments *memCommentStore
}

func newSyncFixture(auth CredentialChecker) *syncFixture {
	f := &syncFixture{
		upstream: &fakeUpstream{},
		blogs:    newMemBlogStore(),
		posts:    newMemPostStore(),
		pages:    newMemPageStore(),
		comments: newMemCommentStore(),
	}
	f.svc = NewSyncService(auth, f.upstream, f.blogs, f.posts, f.pages, f.comments, NewRenderer(), testLogger())
	return f
}

func livePost(id string) model.Post {
	return model.Post{ExternalID: id, BlogID: "b1", Title: "Post " + id, Status: model.PostStatusLive, Published: time.Now().UTC()}
}

func TestSyncService_ListPostsLiveWritesThrough(t *testing.T) {
	f := newSyncFixture(allowAuth{})
	f.upstream.posts = []model.Post{livePost("p1"), livePost("p2")}

	result, err := f.svc.ListPosts(context.Background(), "admin-1", "b1", driven.PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, model.SourceLive, result.Source)
	assert.Len(t, result.Items, 2)

	assert.Len(t, f.posts.items, 2, "every live entity mirrored")
}

func TestSyncService_ListPostsTransientFailureServesMirror(t *testing.T) {
	f := newSyncFixture(allowAuth{})
	for _, id := range []string{"p1", "p2", "p3"} {
		f.posts.items[id] = livePost(id)
	}
	f.upstream.failWith = transientErr()

	result, err := f.svc.ListPosts(context.Background(), "admin-1", "b1", driven.PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, model.SourceCache, result.Source)
	assert.Len(t, result.Items, 3)
}

func TestSyncService_ListPostsTransientFailureEmptyMirrorPropagates(t *testing.T) {
	f := newSyncFixture(allowAuth{})
	f.upstream.failWith = transientErr()

	_, err := f.svc.ListPosts(context.Background(), "admin-1", "b1", driven.PostFilter{})
	require.Error(t, err)
	assert.Equal(t, driven.UpstreamTransient, driven.UpstreamKind(err))
}

func TestSyncService_RateLimitedAlsoFallsBack(t *testing.T) {
	f := newSyncFixture(allowAuth{})
	f.posts.items["p1"] = livePost("p1")
	f.upstream.failWith = &driven.UpstreamError{Kind: driven.UpstreamRateLimited, Op: "test", StatusCode: 429, Err: errors.New("throttled")}

	result, err := f.svc.ListPosts(context.Background(), "admin-1", "b1", driven.PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, model.SourceCache, result.Source)
}

func TestSyncService_AuthFailureNeverFallsBack(t *testing.T) {
	f := newSyncFixture(allowAuth{})
	f.posts.items["p1"] = livePost("p1")
	f.upstream.failWith = &driven.UpstreamError{Kind: driven.UpstreamAuth, Op: "test", StatusCode: 401, Err: errors.New("rejected")}

	_, err := f.svc.ListPosts(context.Background(), "admin-1", "b1", driven.PostFilter{})
	require.Error(t, err)
	assert.Equal(t, driven.UpstreamAuth, driven.UpstreamKind(err))
}

func TestSyncService_NotFoundNeverMaskedByMirror(t *testing.T) {
	f := newSyncFixture(allowAuth{})
	f.posts.items["p1"] = livePost("p1") // Stale mirror entry for a deleted post.

	_, err := f.svc.GetPost(context.Background(), "admin-1", "b1", "p1")
	require.Error(t, err)
	assert.True(t, driven.IsUpstreamNotFound(err), "upstream not-found must surface, not stale mirror data")
}

func TestSyncService_CredentialErrorPropagates(t *testing.T) {
	f := newSyncFixture(allowAuth{err: driven.ErrNoCredential})
	f.posts.items["p1"] = livePost("p1")

	_, err := f.svc.ListPosts(context.Background(), "admin-1", "b1", driven.PostFilter{})
	assert.ErrorIs(t, err, driven.ErrNoCredential,
		"credential errors are not upstream failures and must not serve the mirror")
}

func TestSyncService_CredentialEndpointOutageFallsBack(t *testing.T) {
	// The token endpoint being down is itself a transient upstream
	// failure, so a populated mirror still serves.
	f := newSyncFixture(allowAuth{err: transientErr()})
	f.posts.items["p1"] = livePost("p1")

	result, err := f.svc.ListPosts(context.Background(), "admin-1", "b1", driven.PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, model.SourceCache, result.Source)
}

func TestSyncService_MirrorWriteFailureDoesNotFailLiveRead(t *testing.T) {
	f := newSyncFixture(allowAuth{})
	f.upstream.posts = []model.Post{livePost("p1")}
	f.posts.upsertErr = fmt.Errorf("disk full")

	result, err := f.svc.ListPosts(context.Background(), "admin-1", "b1", driven.PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, model.SourceLive, result.Source)
	assert.Len(t, result.Items, 1)
}

func TestSyncService_GetBlogLiveMirrorsEntity(t *testing.T) {
	f := newSyncFixture(allowAuth{})
	f.upstream.blogs = []model.Blog{{ExternalID: "b1", Name: "Blog"}}

	result, err := f.svc.GetBlog(context.Background(), "admin-1", "b1")
	require.NoError(t, err)
	assert.Equal(t, model.SourceLive, result.Source)

	mirrored, err := f.blogs.Get(context.Background(), "admin-1", "b1")
	require.NoError(t, err)
	assert.NotNil(t, mirrored)
}

func TestSyncService_CreatePostRendersMarkdown(t *testing.T) {
	f := newSyncFixture(allowAuth{})

	post, err := f.svc.CreatePost(context.Background(), "admin-1", "b1", model.PostDraft{
		Title:   "Hello",
		Content: "# Heading\n\nSome **bold** text.",
		Format:  model.ContentFormatMarkdown,
	})
	require.NoError(t, err)

	assert.Contains(t, f.upstream.lastDraftContent, "<h1")
	assert.Contains(t, f.upstream.lastDraftContent, "<strong>bold</strong>")

	assert.Contains(t, f.posts.items, post.ExternalID, "created post mirrored")
}

func TestSyncService_CreatePostSanitizesHTML(t *testing.T) {
	f := newSyncFixture(allowAuth{})

	_, err := f.svc.CreatePost(context.Background(), "admin-1", "b1", model.PostDraft{
		Title:   "Sneaky",
		Content: `<p onclick="steal()">hi</p><script>alert(1)</script>`,
		Format:  model.ContentFormatHTML,
	})
	require.NoError(t, err)

	assert.NotContains(t, f.upstream.lastDraftContent, "<script")
	assert.NotContains(t, f.upstream.lastDraftContent, "onclick")
	assert.True(t, strings.Contains(f.upstream.lastDraftContent, "hi"))
}

func TestSyncService_CreatePostUpstreamFailureNoMirrorWrite(t *testing.T) {
	f := newSyncFixture(allowAuth{})
	f.upstream.failWith = transientErr()

	_, err := f.svc.CreatePost(context.Background(), "admin-1", "b1", model.PostDraft{Title: "T", Content: "c"})
	require.Error(t, err)
	assert.Empty(t, f.posts.items, "writes have no fallback and no partial mirror state")
}

func TestSyncService_DeletePostDropsMirrorEntry(t *testing.T) {
	f := newSyncFixture(allowAuth{})
	f.posts.items["p1"] = livePost("p1")

	require.NoError(t, f.svc.DeletePost(context.Background(), "admin-1", "b1", "p1"))
	assert.NotContains(t, f.posts.items, "p1")
}

func TestSyncService_ApproveCommentUpdatesMirror(t *testing.T) {
	f := newSyncFixture(allowAuth{})
	f.comments.items["c1"] = model.Comment{ExternalID: "c1", Status: model.CommentStatusPending}

	comment, err := f.svc.ApproveComment(context.Background(), "admin-1", "b1", "p1", "c1")
	require.NoError(t, err)
	assert.Equal(t, model.CommentStatusLive, comment.Status)
	assert.Equal(t, model.CommentStatusLive, f.comments.items["c1"].Status)
}

func TestSyncService_ListBlogsFallback(t *testing.T) {
	f := newSyncFixture(allowAuth{})
	f.blogs.items["b1"] = model.Blog{ExternalID: "b1", Name: "Mirrored"}
	f.upstream.failWith = transientErr()

	result, err := f.svc.ListBlogs(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, model.SourceCache, result.Source)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Mirrored", result.Items[0].Name)
}
