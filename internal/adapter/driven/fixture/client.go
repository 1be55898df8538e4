// Package fixture implements the ContentClient port with in-memory seed
// data. It backs demo mode, where the dashboard runs without upstream
// credentials and mutations only affect process memory.
package fixture

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
	"github.com/adiwicaksono/blogpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ContentClient = (*Client)(nil)

// DemoBlogID is the external id of the seeded blog.
const DemoBlogID = "demo-blog-1"

// Client serves seeded content and applies mutations in memory. Safe for
// concurrent use.
type Client struct {
	mu       sync.Mutex
	blogs    []model.Blog
	posts    []model.Post
	pages    []model.Page
	comments []model.Comment
	nextID   int
}

// NewClient creates a demo client with one seeded blog, three posts, two
// pages and three comments.
func NewClient() *Client {
	seeded := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

	c := &Client{nextID: 100}

	c.blogs = []model.Blog{{
		ExternalID:  DemoBlogID,
		Name:        "Demo Blog",
		Description: "A seeded blog for exploring the dashboard without credentials.",
		URL:         "https://demo.example.com",
		Status:      model.BlogStatusLive,
		PostCount:   3,
		PageCount:   2,
		Published:   seeded,
		Updated:     seeded.Add(72 * time.Hour),
	}}

	c.posts = []model.Post{
		{
			ExternalID: "demo-post-1", BlogID: DemoBlogID,
			Title:   "Welcome to the demo",
			Content: "<p>This post is served from seed data.</p>",
			Status:  model.PostStatusLive,
			Labels:  []string{"demo", "welcome"},
			Author:  "Demo Author", URL: "https://demo.example.com/welcome",
			ReplyCount: 2,
			Published:  seeded, Updated: seeded,
		},
		{
			ExternalID: "demo-post-2", BlogID: DemoBlogID,
			Title:   "Writing with markdown",
			Content: "<p>Drafts are rendered and sanitized before publishing.</p>",
			Status:  model.PostStatusLive,
			Labels:  []string{"demo"},
			Author:  "Demo Author", URL: "https://demo.example.com/markdown",
			ReplyCount: 1,
			Published:  seeded.Add(24 * time.Hour), Updated: seeded.Add(24 * time.Hour),
		},
		{
			ExternalID: "demo-post-3", BlogID: DemoBlogID,
			Title:   "An unpublished idea",
			Content: "<p>Still cooking.</p>",
			Status:  model.PostStatusDraft,
			Author:  "Demo Author",
			Published: seeded.Add(48 * time.Hour), Updated: seeded.Add(48 * time.Hour),
		},
	}

	c.pages = []model.Page{
		{
			ExternalID: "demo-page-1", BlogID: DemoBlogID,
			Title:   "About",
			Content: "<p>About this demo blog.</p>",
			Status:  model.PostStatusLive,
			Author:  "Demo Author", URL: "https://demo.example.com/about",
			Published: seeded, Updated: seeded,
		},
		{
			ExternalID: "demo-page-2", BlogID: DemoBlogID,
			Title:   "Contact",
			Content: "<p>Reach us at demo@example.com.</p>",
			Status:  model.PostStatusLive,
			Author:  "Demo Author", URL: "https://demo.example.com/contact",
			Published: seeded, Updated: seeded,
		},
	}

	c.comments = []model.Comment{
		{
			ExternalID: "demo-comment-1", BlogID: DemoBlogID, PostID: "demo-post-1",
			Author: "Reader One", Content: "Great introduction!",
			Status:    model.CommentStatusLive,
			Published: seeded.Add(2 * time.Hour), Updated: seeded.Add(2 * time.Hour),
		},
		{
			ExternalID: "demo-comment-2", BlogID: DemoBlogID, PostID: "demo-post-1",
			Author: "Reader Two", Content: "Waiting for moderation.",
			Status:    model.CommentStatusPending,
			Published: seeded.Add(3 * time.Hour), Updated: seeded.Add(3 * time.Hour),
		},
		{
			ExternalID: "demo-comment-3", BlogID: DemoBlogID, PostID: "demo-post-2",
			Author: "Bot", Content: "Cheap watches here",
			Status:    model.CommentStatusSpam,
			Published: seeded.Add(26 * time.Hour), Updated: seeded.Add(26 * time.Hour),
		},
	}

	return c
}

func notFound(op, id string) error {
	return &driven.UpstreamError{
		Kind:       driven.UpstreamNotFound,
		Op:         op,
		StatusCode: http.StatusNotFound,
		Err:        fmt.Errorf("demo fixture: %s not found", id),
	}
}

// stamp assigns the principal to a copy of the entity so demo data looks
// owned by whoever asks.
func withPrincipal[T any](items []T, set func(*T)) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := range out {
		set(&out[i])
	}
	return out
}

// ListBlogs returns the seeded blogs.
func (c *Client) ListBlogs(ctx context.Context, principalID string) ([]model.Blog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return withPrincipal(c.blogs, func(b *model.Blog) { b.PrincipalID = principalID }), nil
}

// GetBlog returns a seeded blog by id.
func (c *Client) GetBlog(ctx context.Context, principalID, blogID string) (*model.Blog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, b := range c.blogs {
		if b.ExternalID == blogID {
			b.PrincipalID = principalID
			return &b, nil
		}
	}
	return nil, notFound("get blog", blogID)
}

// ListPosts returns seeded posts matching the filter.
func (c *Client) ListPosts(ctx context.Context, principalID, blogID string, filter driven.PostFilter) ([]model.Post, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = []model.PostStatus{model.PostStatusLive, model.PostStatusDraft}
	}
	wanted := make(map[model.PostStatus]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	var posts []model.Post
	for _, p := range c.posts {
		if p.BlogID != blogID || !wanted[p.Status] {
			continue
		}
		p.PrincipalID = principalID
		posts = append(posts, p)
		if filter.MaxResults > 0 && len(posts) >= filter.MaxResults {
			break
		}
	}

	return posts, nil
}

// GetPost returns a seeded post by id.
func (c *Client) GetPost(ctx context.Context, principalID, blogID, postID string) (*model.Post, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.posts {
		if p.BlogID == blogID && p.ExternalID == postID {
			p.PrincipalID = principalID
			return &p, nil
		}
	}
	return nil, notFound("get post", postID)
}

// CreatePost appends a post to the in-memory set.
func (c *Client) CreatePost(ctx context.Context, principalID, blogID string, draft model.PostDraft) (*model.Post, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()
	status := model.PostStatusLive
	if draft.IsDraft {
		status = model.PostStatusDraft
	}

	post := model.Post{
		ExternalID:  "demo-post-" + strconv.Itoa(c.nextID),
		PrincipalID: principalID,
		BlogID:      blogID,
		Title:       draft.Title,
		Content:     draft.Content,
		Status:      status,
		Labels:      draft.Labels,
		Author:      "Demo Author",
		Published:   now,
		Updated:     now,
	}
	c.nextID++
	c.posts = append(c.posts, post)

	return &post, nil
}

// UpdatePost replaces a post's editable fields in memory.
func (c *Client) UpdatePost(ctx context.Context, principalID, blogID, postID string, draft model.PostDraft) (*model.Post, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.posts {
		p := &c.posts[i]
		if p.BlogID != blogID || p.ExternalID != postID {
			continue
		}
		p.Title = draft.Title
		p.Content = draft.Content
		p.Labels = draft.Labels
		p.Updated = time.Now().UTC()

		out := *p
		out.PrincipalID = principalID
		return &out, nil
	}
	return nil, notFound("update post", postID)
}

// DeletePost removes a post from the in-memory set.
func (c *Client) DeletePost(ctx context.Context, principalID, blogID, postID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.posts {
		if c.posts[i].BlogID == blogID && c.posts[i].ExternalID == postID {
			c.posts = append(c.posts[:i], c.posts[i+1:]...)
			return nil
		}
	}
	return notFound("delete post", postID)
}

// ListPages returns seeded pages for the blog.
func (c *Client) ListPages(ctx context.Context, principalID, blogID string) ([]model.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var pages []model.Page
	for _, p := range c.pages {
		if p.BlogID != blogID {
			continue
		}
		p.PrincipalID = principalID
		pages = append(pages, p)
	}
	return pages, nil
}

// GetPage returns a seeded page by id.
func (c *Client) GetPage(ctx context.Context, principalID, blogID, pageID string) (*model.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.pages {
		if p.BlogID == blogID && p.ExternalID == pageID {
			p.PrincipalID = principalID
			return &p, nil
		}
	}
	return nil, notFound("get page", pageID)
}

// CreatePage appends a page to the in-memory set.
func (c *Client) CreatePage(ctx context.Context, principalID, blogID string, draft model.PageDraft) (*model.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()
	status := model.PostStatusLive
	if draft.IsDraft {
		status = model.PostStatusDraft
	}

	page := model.Page{
		ExternalID:  "demo-page-" + strconv.Itoa(c.nextID),
		PrincipalID: principalID,
		BlogID:      blogID,
		Title:       draft.Title,
		Content:     draft.Content,
		Status:      status,
		Author:      "Demo Author",
		Published:   now,
		Updated:     now,
	}
	c.nextID++
	c.pages = append(c.pages, page)

	return &page, nil
}

// UpdatePage replaces a page's editable fields in memory.
func (c *Client) UpdatePage(ctx context.Context, principalID, blogID, pageID string, draft model.PageDraft) (*model.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.pages {
		p := &c.pages[i]
		if p.BlogID != blogID || p.ExternalID != pageID {
			continue
		}
		p.Title = draft.Title
		p.Content = draft.Content
		p.Updated = time.Now().UTC()

		out := *p
		out.PrincipalID = principalID
		return &out, nil
	}
	return nil, notFound("update page", pageID)
}

// DeletePage removes a page from the in-memory set.
func (c *Client) DeletePage(ctx context.Context, principalID, blogID, pageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.pages {
		if c.pages[i].BlogID == blogID && c.pages[i].ExternalID == pageID {
			c.pages = append(c.pages[:i], c.pages[i+1:]...)
			return nil
		}
	}
	return notFound("delete page", pageID)
}

// ListComments returns seeded comments, narrowed to one post when postID
// is non-empty.
func (c *Client) ListComments(ctx context.Context, principalID, blogID, postID string) ([]model.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var comments []model.Comment
	for _, cm := range c.comments {
		if cm.BlogID != blogID {
			continue
		}
		if postID != "" && cm.PostID != postID {
			continue
		}
		cm.PrincipalID = principalID
		comments = append(comments, cm)
	}
	return comments, nil
}

// ApproveComment publishes a pending comment in memory.
func (c *Client) ApproveComment(ctx context.Context, principalID, blogID, postID, commentID string) (*model.Comment, error) {
	return c.setCommentStatus(principalID, blogID, postID, commentID, model.CommentStatusLive, "approve comment")
}

// MarkCommentSpam flags a comment as spam in memory.
func (c *Client) MarkCommentSpam(ctx context.Context, principalID, blogID, postID, commentID string) (*model.Comment, error) {
	return c.setCommentStatus(principalID, blogID, postID, commentID, model.CommentStatusSpam, "mark comment spam")
}

func (c *Client) setCommentStatus(principalID, blogID, postID, commentID string, status model.CommentStatus, op string) (*model.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.comments {
		cm := &c.comments[i]
		if cm.BlogID != blogID || cm.PostID != postID || cm.ExternalID != commentID {
			continue
		}
		cm.Status = status
		cm.Updated = time.Now().UTC()

		out := *cm
		out.PrincipalID = principalID
		return &out, nil
	}
	return nil, notFound(op, commentID)
}

// DeleteComment removes a comment from the in-memory set.
func (c *Client) DeleteComment(ctx context.Context, principalID, blogID, postID, commentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.comments {
		cm := c.comments[i]
		if cm.BlogID == blogID && cm.PostID == postID && cm.ExternalID == commentID {
			c.comments = append(c.comments[:i], c.comments[i+1:]...)
			return nil
		}
	}
	return notFound("delete comment", commentID)
}
