package blogger

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
	"github.com/adiwicaksono/blogpanel/internal/domain/port/driven"
)

// ListPosts retrieves posts for a blog, following nextPageToken until
// the filter's MaxResults cap (or the end of the collection).
func (c *Client) ListPosts(ctx context.Context, principalID, blogID string, filter driven.PostFilter) ([]model.Post, error) {
	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = []model.PostStatus{model.PostStatusLive, model.PostStatusDraft}
	}

	limit := filter.MaxResults
	if limit <= 0 {
		limit = defaultPageSize
	}

	path := "/blogs/" + url.PathEscape(blogID) + "/posts"

	var posts []model.Post
	pageToken := ""
	for {
		query := url.Values{}
		query.Set("fetchBodies", "true")
		query.Set("view", "ADMIN")
		query.Set("maxResults", strconv.Itoa(min(limit-len(posts), defaultPageSize)))
		for _, s := range statuses {
			query.Add("status", string(s))
		}
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		var page postList
		if err := c.do(ctx, principalID, http.MethodGet, path, query, nil, &page, "list posts"); err != nil {
			return nil, err
		}

		for _, p := range page.Items {
			posts = append(posts, mapPost(p, principalID))
		}

		pageToken = page.NextPageToken
		if pageToken == "" || len(posts) >= limit {
			break
		}
	}

	if len(posts) > limit {
		posts = posts[:limit]
	}

	return posts, nil
}

// GetPost retrieves a single post.
func (c *Client) GetPost(ctx context.Context, principalID, blogID, postID string) (*model.Post, error) {
	path := "/blogs/" + url.PathEscape(blogID) + "/posts/" + url.PathEscape(postID)
	query := url.Values{"view": {"ADMIN"}}

	var p postResource
	if err := c.do(ctx, principalID, http.MethodGet, path, query, nil, &p, "get post"); err != nil {
		return nil, err
	}

	post := mapPost(p, principalID)
	return &post, nil
}

// CreatePost inserts a new post. Draft content must already be rendered
// to sanitized HTML.
func (c *Client) CreatePost(ctx context.Context, principalID, blogID string, draft model.PostDraft) (*model.Post, error) {
	path := "/blogs/" + url.PathEscape(blogID) + "/posts"
	query := url.Values{"isDraft": {strconv.FormatBool(draft.IsDraft)}}

	body := postBody{
		Kind:    "blogger#post",
		Title:   draft.Title,
		Content: draft.Content,
		Labels:  draft.Labels,
	}

	var p postResource
	if err := c.do(ctx, principalID, http.MethodPost, path, query, body, &p, "create post"); err != nil {
		return nil, err
	}

	post := mapPost(p, principalID)
	return &post, nil
}

// UpdatePost replaces a post's title, content and labels.
func (c *Client) UpdatePost(ctx context.Context, principalID, blogID, postID string, draft model.PostDraft) (*model.Post, error) {
	path := "/blogs/" + url.PathEscape(blogID) + "/posts/" + url.PathEscape(postID)

	body := postBody{
		Kind:    "blogger#post",
		Title:   draft.Title,
		Content: draft.Content,
		Labels:  draft.Labels,
	}

	var p postResource
	if err := c.do(ctx, principalID, http.MethodPut, path, nil, body, &p, "update post"); err != nil {
		return nil, err
	}

	post := mapPost(p, principalID)
	return &post, nil
}

// DeletePost permanently removes a post.
func (c *Client) DeletePost(ctx context.Context, principalID, blogID, postID string) error {
	path := "/blogs/" + url.PathEscape(blogID) + "/posts/" + url.PathEscape(postID)
	return c.do(ctx, principalID, http.MethodDelete, path, nil, nil, nil, "delete post")
}
