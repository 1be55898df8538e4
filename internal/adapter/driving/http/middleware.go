package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

// statusWriter wraps http.ResponseWriter to capture the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the embedded writer.
func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs each HTTP request with method, path, status, and duration.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// recoveryMiddleware recovers from panics in HTTP handlers, logs the error,
// and returns a 500 response.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic recovered",
					"panic", v,
					"path", r.URL.Path,
				)
				writeError(w, http.StatusInternalServerError, "internal", "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// adminContextKey keys the authenticated admin in the request context.
type adminContextKey struct{}

// adminFrom returns the authenticated admin stored by requireAuth.
func adminFrom(ctx context.Context) *model.Admin {
	admin, _ := ctx.Value(adminContextKey{}).(*model.Admin)
	return admin
}

// requireAuth verifies the bearer session token and stores the resolved
// admin in the request context.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "invalid_session", "missing bearer token")
			return
		}

		admin, err := h.sessions.Verify(r.Context(), token)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}

		ctx := context.WithValue(r.Context(), adminContextKey{}, admin)
		next(w, r.WithContext(ctx))
	}
}
