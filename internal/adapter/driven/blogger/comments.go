package blogger

import (
	"context"
	"net/http"
	"net/url"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

// ListComments retrieves comments for the blog, restricted to one post
// when postID is non-empty. Pending and spam entries are included so the
// moderation queue shows everything.
func (c *Client) ListComments(ctx context.Context, principalID, blogID, postID string) ([]model.Comment, error) {
	path := "/blogs/" + url.PathEscape(blogID) + "/comments"
	if postID != "" {
		path = "/blogs/" + url.PathEscape(blogID) + "/posts/" + url.PathEscape(postID) + "/comments"
	}

	var comments []model.Comment
	pageToken := ""
	for {
		query := url.Values{}
		query.Set("fetchBodies", "true")
		query.Set("view", "ADMIN")
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		var list commentList
		if err := c.do(ctx, principalID, http.MethodGet, path, query, nil, &list, "list comments"); err != nil {
			return nil, err
		}

		for _, cm := range list.Items {
			comments = append(comments, mapComment(cm, principalID))
		}

		pageToken = list.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return comments, nil
}

// ApproveComment publishes a pending comment.
func (c *Client) ApproveComment(ctx context.Context, principalID, blogID, postID, commentID string) (*model.Comment, error) {
	return c.moderateComment(ctx, principalID, blogID, postID, commentID, "approve", "approve comment")
}

// MarkCommentSpam flags a comment as spam.
func (c *Client) MarkCommentSpam(ctx context.Context, principalID, blogID, postID, commentID string) (*model.Comment, error) {
	return c.moderateComment(ctx, principalID, blogID, postID, commentID, "spam", "mark comment spam")
}

func (c *Client) moderateComment(ctx context.Context, principalID, blogID, postID, commentID, action, op string) (*model.Comment, error) {
	path := "/blogs/" + url.PathEscape(blogID) + "/posts/" + url.PathEscape(postID) +
		"/comments/" + url.PathEscape(commentID) + "/" + action

	var cm commentResource
	if err := c.do(ctx, principalID, http.MethodPost, path, nil, nil, &cm, op); err != nil {
		return nil, err
	}

	comment := mapComment(cm, principalID)
	return &comment, nil
}

// DeleteComment permanently removes a comment.
func (c *Client) DeleteComment(ctx context.Context, principalID, blogID, postID, commentID string) error {
	path := "/blogs/" + url.PathEscape(blogID) + "/posts/" + url.PathEscape(postID) +
		"/comments/" + url.PathEscape(commentID)
	return c.do(ctx, principalID, http.MethodDelete, path, nil, nil, nil, "delete comment")
}
