package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/adiwicaksono/blogpanel/internal/application"
	"github.com/adiwicaksono/blogpanel/internal/domain/model"
	"github.com/adiwicaksono/blogpanel/internal/domain/port/driven"
)

// envelope is the uniform response body. Success responses carry data
// (and a source tag when the read may have degraded to the mirror);
// failures carry a classified error.
type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
	Source  string     `json:"source,omitempty"`
}

// errorBody is the error half of the envelope. Kind is a stable
// machine-readable tag; Message is for humans.
type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":{"kind":"internal","message":"internal server error"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeData writes a success envelope.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writeSourced writes a success envelope tagged with where the read was
// served from.
func writeSourced(w http.ResponseWriter, status int, data any, source model.Source) {
	writeJSON(w, status, envelope{Success: true, Data: data, Source: string(source)})
}

// writeMessage writes a success envelope with no data payload.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: true, Message: message})
}

// writeError writes a failure envelope.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, envelope{Success: false, Error: &errorBody{Kind: kind, Message: message}})
}

// writeServiceError maps an application-layer error onto a status code
// and error kind. Unrecognized errors are logged and reported as opaque
// internal failures.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, driven.ErrNoCredential):
		writeError(w, http.StatusUnauthorized, "no_credential", "blog platform not connected: authorize first")
	case errors.Is(err, driven.ErrReauthorizationRequired):
		writeError(w, http.StatusUnauthorized, "reauthorization_required", "blog platform authorization was revoked: authorize again")
	case errors.Is(err, application.ErrInvalidLogin):
		writeError(w, http.StatusUnauthorized, "invalid_login", "invalid username or password")
	case errors.Is(err, application.ErrInvalidSession):
		writeError(w, http.StatusUnauthorized, "invalid_session", "session expired or invalid")
	case errors.Is(err, application.ErrUnsupportedMediaType):
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media", "only image uploads are accepted")
	default:
		writeUpstreamError(w, logger, err)
	}
}

func writeUpstreamError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch driven.UpstreamKind(err) {
	case driven.UpstreamNotFound:
		writeError(w, http.StatusNotFound, "not_found", "not found")
	case driven.UpstreamRateLimited:
		writeError(w, http.StatusServiceUnavailable, "rate_limited", "blog platform is throttling requests: try again shortly")
	case driven.UpstreamTransient:
		writeError(w, http.StatusBadGateway, "upstream_unavailable", "blog platform is unreachable")
	case driven.UpstreamAuth:
		writeError(w, http.StatusUnauthorized, "upstream_auth", "blog platform rejected our authorization")
	default:
		logger.Error("unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// BlogResponse is the JSON representation of a blog.
type BlogResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Status      string `json:"status"`
	PostCount   int    `json:"post_count"`
	PageCount   int    `json:"page_count"`
	Published   string `json:"published"`
	Updated     string `json:"updated"`
}

// PostResponse is the JSON representation of a post.
type PostResponse struct {
	ID         string   `json:"id"`
	BlogID     string   `json:"blog_id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Status     string   `json:"status"`
	Labels     []string `json:"labels"`
	Author     string   `json:"author"`
	URL        string   `json:"url"`
	ReplyCount int      `json:"reply_count"`
	Published  string   `json:"published"`
	Updated    string   `json:"updated"`
}

// PageResponse is the JSON representation of a static page.
type PageResponse struct {
	ID        string `json:"id"`
	BlogID    string `json:"blog_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Status    string `json:"status"`
	Author    string `json:"author"`
	URL       string `json:"url"`
	Published string `json:"published"`
	Updated   string `json:"updated"`
}

// CommentResponse is the JSON representation of a comment.
type CommentResponse struct {
	ID        string `json:"id"`
	BlogID    string `json:"blog_id"`
	PostID    string `json:"post_id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	Status    string `json:"status"`
	Published string `json:"published"`
	Updated   string `json:"updated"`
}

// AdminResponse is the JSON representation of an admin account. The
// password hash is deliberately absent.
type AdminResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	LastLogin string `json:"last_login,omitempty"`
	CreatedAt string `json:"created_at"`
}

// LoginResponse is the JSON payload of a successful login.
type LoginResponse struct {
	Token string        `json:"token"`
	Admin AdminResponse `json:"admin"`
}

// MediaResponse is the JSON representation of a content library entry.
type MediaResponse struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	UploadedAt  string `json:"uploaded_at"`
}

// LoginRequest is the JSON body of the login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the JSON body of the password change endpoint.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ExchangeCodeRequest is the JSON body of the authorization-code
// exchange endpoint.
type ExchangeCodeRequest struct {
	Code string `json:"code"`
}

// PostRequest is the JSON body for post create and update.
type PostRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Format  string   `json:"format"`
	Labels  []string `json:"labels"`
	IsDraft bool     `json:"is_draft"`
}

// PageRequest is the JSON body for page create and update.
type PageRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Format  string `json:"format"`
	IsDraft bool   `json:"is_draft"`
}

func toBlogResponse(b model.Blog) BlogResponse {
	return BlogResponse{
		ID:          b.ExternalID,
		Name:        b.Name,
		Description: b.Description,
		URL:         b.URL,
		Status:      string(b.Status),
		PostCount:   b.PostCount,
		PageCount:   b.PageCount,
		Published:   b.Published.UTC().Format(time.RFC3339),
		Updated:     b.Updated.UTC().Format(time.RFC3339),
	}
}

func toPostResponse(p model.Post) PostResponse {
	labels := p.Labels
	if labels == nil {
		labels = []string{}
	}

	return PostResponse{
		ID:         p.ExternalID,
		BlogID:     p.BlogID,
		Title:      p.Title,
		Content:    p.Content,
		Status:     string(p.Status),
		Labels:     labels,
		Author:     p.Author,
		URL:        p.URL,
		ReplyCount: p.ReplyCount,
		Published:  p.Published.UTC().Format(time.RFC3339),
		Updated:    p.Updated.UTC().Format(time.RFC3339),
	}
}

func toPageResponse(p model.Page) PageResponse {
	return PageResponse{
		ID:        p.ExternalID,
		BlogID:    p.BlogID,
		Title:     p.Title,
		Content:   p.Content,
		Status:    string(p.Status),
		Author:    p.Author,
		URL:       p.URL,
		Published: p.Published.UTC().Format(time.RFC3339),
		Updated:   p.Updated.UTC().Format(time.RFC3339),
	}
}

func toCommentResponse(c model.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ExternalID,
		BlogID:    c.BlogID,
		PostID:    c.PostID,
		Author:    c.Author,
		Content:   c.Content,
		Status:    string(c.Status),
		Published: c.Published.UTC().Format(time.RFC3339),
		Updated:   c.Updated.UTC().Format(time.RFC3339),
	}
}

func toAdminResponse(a model.Admin) AdminResponse {
	resp := AdminResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Role:      a.Role,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !a.LastLogin.IsZero() {
		resp.LastLogin = a.LastLogin.UTC().Format(time.RFC3339)
	}
	return resp
}

func toMediaResponse(m model.MediaAsset) MediaResponse {
	return MediaResponse{
		ID:          m.ID,
		FileName:    m.FileName,
		URL:         "/uploads/" + m.StoredName,
		ContentType: m.ContentType,
		SizeBytes:   m.SizeBytes,
		UploadedAt:  m.UploadedAt.UTC().Format(time.RFC3339),
	}
}
