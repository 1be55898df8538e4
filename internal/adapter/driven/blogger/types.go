package blogger

import (
	"strconv"
	"strings"
	"time"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

// Wire types mirror the Blogger v3 resource shapes. Only the fields the
// dashboard consumes are declared.

type blogList struct {
	Items []blogResource `json:"items"`
}

type blogResource struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Status      string     `json:"status"`
	Published   time.Time  `json:"published"`
	Updated     time.Time  `json:"updated"`
	Posts       totalCount `json:"posts"`
	Pages       totalCount `json:"pages"`
}

type postList struct {
	Items         []postResource `json:"items"`
	NextPageToken string         `json:"nextPageToken"`
}

type postResource struct {
	ID        string        `json:"id"`
	Blog      resourceRef   `json:"blog"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	URL       string        `json:"url"`
	Status    string        `json:"status"`
	Labels    []string      `json:"labels"`
	Author    authorRef     `json:"author"`
	Replies   stringedCount `json:"replies"`
	Published time.Time     `json:"published"`
	Updated   time.Time     `json:"updated"`
}

type pageList struct {
	Items         []pageResource `json:"items"`
	NextPageToken string         `json:"nextPageToken"`
}

type pageResource struct {
	ID        string      `json:"id"`
	Blog      resourceRef `json:"blog"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	URL       string      `json:"url"`
	Status    string      `json:"status"`
	Author    authorRef   `json:"author"`
	Published time.Time   `json:"published"`
	Updated   time.Time   `json:"updated"`
}

type commentList struct {
	Items         []commentResource `json:"items"`
	NextPageToken string            `json:"nextPageToken"`
}

type commentResource struct {
	ID        string      `json:"id"`
	Blog      resourceRef `json:"blog"`
	Post      resourceRef `json:"post"`
	Content   string      `json:"content"`
	Status    string      `json:"status"`
	Author    authorRef   `json:"author"`
	Published time.Time   `json:"published"`
	Updated   time.Time   `json:"updated"`
}

type resourceRef struct {
	ID string `json:"id"`
}

type authorRef struct {
	DisplayName string `json:"displayName"`
}

type totalCount struct {
	TotalItems int `json:"totalItems"`
}

// stringedCount handles counters the API serializes as int64-formatted
// strings (post reply totals).
type stringedCount struct {
	TotalItems string `json:"totalItems"`
}

func (c stringedCount) value() int {
	n, _ := strconv.Atoi(c.TotalItems)
	return n
}

// postBody is the request payload for post inserts and updates.
type postBody struct {
	Kind    string   `json:"kind"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Labels  []string `json:"labels,omitempty"`
}

// pageBody is the request payload for page inserts and updates.
type pageBody struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func mapBlog(b blogResource, principalID string) model.Blog {
	status := model.BlogStatusLive
	if strings.EqualFold(b.Status, string(model.BlogStatusDeleted)) {
		status = model.BlogStatusDeleted
	}

	return model.Blog{
		ExternalID:  b.ID,
		PrincipalID: principalID,
		Name:        b.Name,
		Description: b.Description,
		URL:         b.URL,
		Status:      status,
		PostCount:   b.Posts.TotalItems,
		PageCount:   b.Pages.TotalItems,
		Published:   b.Published.UTC(),
		Updated:     b.Updated.UTC(),
	}
}

func mapPost(p postResource, principalID string) model.Post {
	return model.Post{
		ExternalID:  p.ID,
		PrincipalID: principalID,
		BlogID:      p.Blog.ID,
		Title:       p.Title,
		Content:     p.Content,
		Status:      normalizePostStatus(p.Status),
		Labels:      p.Labels,
		Author:      p.Author.DisplayName,
		URL:         p.URL,
		ReplyCount:  p.Replies.value(),
		Published:   p.Published.UTC(),
		Updated:     p.Updated.UTC(),
	}
}

func mapPage(p pageResource, principalID string) model.Page {
	return model.Page{
		ExternalID:  p.ID,
		PrincipalID: principalID,
		BlogID:      p.Blog.ID,
		Title:       p.Title,
		Content:     p.Content,
		Status:      normalizePostStatus(p.Status),
		Author:      p.Author.DisplayName,
		URL:         p.URL,
		Published:   p.Published.UTC(),
		Updated:     p.Updated.UTC(),
	}
}

func mapComment(c commentResource, principalID string) model.Comment {
	return model.Comment{
		ExternalID:  c.ID,
		PrincipalID: principalID,
		BlogID:      c.Blog.ID,
		PostID:      c.Post.ID,
		Author:      c.Author.DisplayName,
		Content:     c.Content,
		Status:      normalizeCommentStatus(c.Status),
		Published:   c.Published.UTC(),
		Updated:     c.Updated.UTC(),
	}
}

// normalizePostStatus lowercases the API status. Older responses use
// upper-case values; published entries are the default for anything
// unrecognized.
func normalizePostStatus(s string) model.PostStatus {
	switch strings.ToLower(s) {
	case string(model.PostStatusDraft):
		return model.PostStatusDraft
	case string(model.PostStatusScheduled):
		return model.PostStatusScheduled
	default:
		return model.PostStatusLive
	}
}

func normalizeCommentStatus(s string) model.CommentStatus {
	switch strings.ToLower(s) {
	case string(model.CommentStatusLive):
		return model.CommentStatusLive
	case string(model.CommentStatusSpam):
		return model.CommentStatusSpam
	default:
		return model.CommentStatusPending
	}
}
