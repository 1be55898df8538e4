// Package httphandler is the HTTP driving adapter serving the dashboard
// REST API.
package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/adiwicaksono/blogpanel/internal/application"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	auth           *application.AuthService
	sessions       *application.SessionService
	sync           *application.SyncService
	stats          *application.StatsService
	media          *application.MediaService
	uploadDir      string
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	auth *application.AuthService,
	sessions *application.SessionService,
	sync *application.SyncService,
	stats *application.StatsService,
	media *application.MediaService,
	uploadDir string,
	maxUploadBytes int64,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		auth:           auth,
		sessions:       sessions,
		sync:           sync,
		stats:          stats,
		media:          media,
		uploadDir:      uploadDir,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware. Everything except the health
// check, login, and uploaded files requires a valid session token.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.uploadDir))))

	mux.HandleFunc("GET /api/auth/me", h.requireAuth(h.Me))
	mux.HandleFunc("POST /api/auth/password", h.requireAuth(h.ChangePassword))

	mux.HandleFunc("GET /api/oauth/url", h.requireAuth(h.OAuthURL))
	mux.HandleFunc("POST /api/oauth/exchange", h.requireAuth(h.OAuthExchange))
	mux.HandleFunc("GET /api/oauth/status", h.requireAuth(h.OAuthStatus))
	mux.HandleFunc("DELETE /api/oauth", h.requireAuth(h.OAuthDisconnect))

	mux.HandleFunc("GET /api/blogs", h.requireAuth(h.ListBlogs))
	mux.HandleFunc("GET /api/blogs/{blogId}", h.requireAuth(h.GetBlog))

	mux.HandleFunc("GET /api/blogs/{blogId}/posts", h.requireAuth(h.ListPosts))
	mux.HandleFunc("GET /api/blogs/{blogId}/posts/{postId}", h.requireAuth(h.GetPost))
	mux.HandleFunc("POST /api/blogs/{blogId}/posts", h.requireAuth(h.CreatePost))
	mux.HandleFunc("PUT /api/blogs/{blogId}/posts/{postId}", h.requireAuth(h.UpdatePost))
	mux.HandleFunc("DELETE /api/blogs/{blogId}/posts/{postId}", h.requireAuth(h.DeletePost))

	mux.HandleFunc("GET /api/blogs/{blogId}/pages", h.requireAuth(h.ListPages))
	mux.HandleFunc("GET /api/blogs/{blogId}/pages/{pageId}", h.requireAuth(h.GetPage))
	mux.HandleFunc("POST /api/blogs/{blogId}/pages", h.requireAuth(h.CreatePage))
	mux.HandleFunc("PUT /api/blogs/{blogId}/pages/{pageId}", h.requireAuth(h.UpdatePage))
	mux.HandleFunc("DELETE /api/blogs/{blogId}/pages/{pageId}", h.requireAuth(h.DeletePage))

	mux.HandleFunc("GET /api/blogs/{blogId}/comments", h.requireAuth(h.ListComments))
	mux.HandleFunc("POST /api/blogs/{blogId}/posts/{postId}/comments/{commentId}/approve", h.requireAuth(h.ApproveComment))
	mux.HandleFunc("POST /api/blogs/{blogId}/posts/{postId}/comments/{commentId}/spam", h.requireAuth(h.MarkCommentSpam))
	mux.HandleFunc("DELETE /api/blogs/{blogId}/posts/{postId}/comments/{commentId}", h.requireAuth(h.DeleteComment))

	mux.HandleFunc("GET /api/blogs/{blogId}/stats", h.requireAuth(h.BlogStats))
	mux.HandleFunc("GET /api/blogs/{blogId}/stats/series", h.requireAuth(h.BlogStatsSeries))

	mux.HandleFunc("POST /api/media", h.requireAuth(h.UploadMedia))
	mux.HandleFunc("GET /api/media", h.requireAuth(h.ListMedia))
	mux.HandleFunc("DELETE /api/media/{id}", h.requireAuth(h.DeleteMedia))

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
