package httphandler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
	"github.com/adiwicaksono/blogpanel/internal/domain/port/driven"
)

// ListBlogs returns the admin's blogs, live when the upstream is healthy.
func (h *Handler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	result, err := h.sync.ListBlogs(r.Context(), admin.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	resp := make([]BlogResponse, 0, len(result.Items))
	for _, b := range result.Items {
		resp = append(resp, toBlogResponse(b))
	}

	writeSourced(w, http.StatusOK, resp, result.Source)
}

// GetBlog returns one blog by id.
func (h *Handler) GetBlog(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	result, err := h.sync.GetBlog(r.Context(), admin.ID, r.PathValue("blogId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeSourced(w, http.StatusOK, toBlogResponse(*result.Item), result.Source)
}

// ListPosts returns posts for a blog, optionally filtered by status
// (?status=live&status=draft) and capped (?max_results=N).
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	filter := driven.PostFilter{}
	for _, s := range r.URL.Query()["status"] {
		switch model.PostStatus(s) {
		case model.PostStatusLive, model.PostStatusDraft, model.PostStatusScheduled:
			filter.Statuses = append(filter.Statuses, model.PostStatus(s))
		default:
			writeError(w, http.StatusBadRequest, "validation", "unknown post status "+strconv.Quote(s))
			return
		}
	}
	if v := r.URL.Query().Get("max_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "validation", "max_results must be a positive integer")
			return
		}
		filter.MaxResults = n
	}

	result, err := h.sync.ListPosts(r.Context(), admin.ID, r.PathValue("blogId"), filter)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	resp := make([]PostResponse, 0, len(result.Items))
	for _, p := range result.Items {
		resp = append(resp, toPostResponse(p))
	}

	writeSourced(w, http.StatusOK, resp, result.Source)
}

// GetPost returns one post by id.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	result, err := h.sync.GetPost(r.Context(), admin.ID, r.PathValue("blogId"), r.PathValue("postId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeSourced(w, http.StatusOK, toPostResponse(*result.Item), result.Source)
}

// decodePostDraft validates and converts a post request body.
func decodePostDraft(w http.ResponseWriter, r *http.Request) (model.PostDraft, bool) {
	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return model.PostDraft{}, false
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "validation", "title is required")
		return model.PostDraft{}, false
	}

	format, ok := parseFormat(req.Format)
	if !ok {
		writeError(w, http.StatusBadRequest, "validation", "format must be \"html\" or \"markdown\"")
		return model.PostDraft{}, false
	}

	return model.PostDraft{
		Title:   req.Title,
		Content: req.Content,
		Format:  format,
		Labels:  req.Labels,
		IsDraft: req.IsDraft,
	}, true
}

// decodePageDraft validates and converts a page request body.
func decodePageDraft(w http.ResponseWriter, r *http.Request) (model.PageDraft, bool) {
	var req PageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid request body")
		return model.PageDraft{}, false
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "validation", "title is required")
		return model.PageDraft{}, false
	}

	format, ok := parseFormat(req.Format)
	if !ok {
		writeError(w, http.StatusBadRequest, "validation", "format must be \"html\" or \"markdown\"")
		return model.PageDraft{}, false
	}

	return model.PageDraft{
		Title:   req.Title,
		Content: req.Content,
		Format:  format,
		IsDraft: req.IsDraft,
	}, true
}

// parseFormat maps the request format field; empty defaults to HTML.
func parseFormat(s string) (model.ContentFormat, bool) {
	switch model.ContentFormat(s) {
	case model.ContentFormatHTML, model.ContentFormatMarkdown:
		return model.ContentFormat(s), true
	case "":
		return model.ContentFormatHTML, true
	default:
		return "", false
	}
}

// CreatePost publishes a new post (or draft) to the blog.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	draft, ok := decodePostDraft(w, r)
	if !ok {
		return
	}

	post, err := h.sync.CreatePost(r.Context(), admin.ID, r.PathValue("blogId"), draft)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusCreated, toPostResponse(*post))
}

// UpdatePost replaces a post's title, content and labels.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	draft, ok := decodePostDraft(w, r)
	if !ok {
		return
	}

	post, err := h.sync.UpdatePost(r.Context(), admin.ID, r.PathValue("blogId"), r.PathValue("postId"), draft)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusOK, toPostResponse(*post))
}

// DeletePost permanently removes a post.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	if err := h.sync.DeletePost(r.Context(), admin.ID, r.PathValue("blogId"), r.PathValue("postId")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, "post deleted")
}

// ListPages returns static pages for a blog.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	result, err := h.sync.ListPages(r.Context(), admin.ID, r.PathValue("blogId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	resp := make([]PageResponse, 0, len(result.Items))
	for _, p := range result.Items {
		resp = append(resp, toPageResponse(p))
	}

	writeSourced(w, http.StatusOK, resp, result.Source)
}

// GetPage returns one static page by id.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	result, err := h.sync.GetPage(r.Context(), admin.ID, r.PathValue("blogId"), r.PathValue("pageId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeSourced(w, http.StatusOK, toPageResponse(*result.Item), result.Source)
}

// CreatePage creates a new static page.
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	draft, ok := decodePageDraft(w, r)
	if !ok {
		return
	}

	page, err := h.sync.CreatePage(r.Context(), admin.ID, r.PathValue("blogId"), draft)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusCreated, toPageResponse(*page))
}

// UpdatePage replaces a page's title and content.
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	draft, ok := decodePageDraft(w, r)
	if !ok {
		return
	}

	page, err := h.sync.UpdatePage(r.Context(), admin.ID, r.PathValue("blogId"), r.PathValue("pageId"), draft)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusOK, toPageResponse(*page))
}

// DeletePage permanently removes a static page.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	if err := h.sync.DeletePage(r.Context(), admin.ID, r.PathValue("blogId"), r.PathValue("pageId")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, "page deleted")
}

// ListComments returns comments for a blog, optionally narrowed to one
// post (?post_id=...).
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	result, err := h.sync.ListComments(r.Context(), admin.ID, r.PathValue("blogId"), r.URL.Query().Get("post_id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	resp := make([]CommentResponse, 0, len(result.Items))
	for _, c := range result.Items {
		resp = append(resp, toCommentResponse(c))
	}

	writeSourced(w, http.StatusOK, resp, result.Source)
}

// ApproveComment publishes a pending comment.
func (h *Handler) ApproveComment(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	comment, err := h.sync.ApproveComment(r.Context(), admin.ID,
		r.PathValue("blogId"), r.PathValue("postId"), r.PathValue("commentId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusOK, toCommentResponse(*comment))
}

// MarkCommentSpam flags a comment as spam.
func (h *Handler) MarkCommentSpam(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	comment, err := h.sync.MarkCommentSpam(r.Context(), admin.ID,
		r.PathValue("blogId"), r.PathValue("postId"), r.PathValue("commentId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusOK, toCommentResponse(*comment))
}

// DeleteComment permanently removes a comment.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	admin := adminFrom(r.Context())

	err := h.sync.DeleteComment(r.Context(), admin.ID,
		r.PathValue("blogId"), r.PathValue("postId"), r.PathValue("commentId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, "comment deleted")
}
