package blogger

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

// ListPages retrieves all static pages for a blog.
func (c *Client) ListPages(ctx context.Context, principalID, blogID string) ([]model.Page, error) {
	path := "/blogs/" + url.PathEscape(blogID) + "/pages"

	var pages []model.Page
	pageToken := ""
	for {
		query := url.Values{}
		query.Set("fetchBodies", "true")
		query.Set("view", "ADMIN")
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		var list pageList
		if err := c.do(ctx, principalID, http.MethodGet, path, query, nil, &list, "list pages"); err != nil {
			return nil, err
		}

		for _, p := range list.Items {
			pages = append(pages, mapPage(p, principalID))
		}

		pageToken = list.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return pages, nil
}

// GetPage retrieves a single static page.
func (c *Client) GetPage(ctx context.Context, principalID, blogID, pageID string) (*model.Page, error) {
	path := "/blogs/" + url.PathEscape(blogID) + "/pages/" + url.PathEscape(pageID)
	query := url.Values{"view": {"ADMIN"}}

	var p pageResource
	if err := c.do(ctx, principalID, http.MethodGet, path, query, nil, &p, "get page"); err != nil {
		return nil, err
	}

	page := mapPage(p, principalID)
	return &page, nil
}

// CreatePage inserts a new static page.
func (c *Client) CreatePage(ctx context.Context, principalID, blogID string, draft model.PageDraft) (*model.Page, error) {
	path := "/blogs/" + url.PathEscape(blogID) + "/pages"
	query := url.Values{"isDraft": {strconv.FormatBool(draft.IsDraft)}}

	body := pageBody{
		Kind:    "blogger#page",
		Title:   draft.Title,
		Content: draft.Content,
	}

	var p pageResource
	if err := c.do(ctx, principalID, http.MethodPost, path, query, body, &p, "create page"); err != nil {
		return nil, err
	}

	page := mapPage(p, principalID)
	return &page, nil
}

// UpdatePage replaces a page's title and content.
func (c *Client) UpdatePage(ctx context.Context, principalID, blogID, pageID string, draft model.PageDraft) (*model.Page, error) {
	path := "/blogs/" + url.PathEscape(blogID) + "/pages/" + url.PathEscape(pageID)

	body := pageBody{
		Kind:    "blogger#page",
		Title:   draft.Title,
		Content: draft.Content,
	}

	var p pageResource
	if err := c.do(ctx, principalID, http.MethodPut, path, nil, body, &p, "update page"); err != nil {
		return nil, err
	}

	page := mapPage(p, principalID)
	return &page, nil
}

// DeletePage permanently removes a static page.
func (c *Client) DeletePage(ctx context.Context, principalID, blogID, pageID string) error {
	path := "/blogs/" + url.PathEscape(blogID) + "/pages/" + url.PathEscape(pageID)
	return c.do(ctx, principalID, http.MethodDelete, path, nil, nil, nil, "delete page")
}
