package httphandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adiwicaksono/blogpanel/internal/adapter/driven/fixture"
	sqliteadapter "github.com/adiwicaksono/blogpanel/internal/adapter/driven/sqlite"
	"github.com/adiwicaksono/blogpanel/internal/application"
	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

// stubExchanger answers OAuth calls without a network.
type stubExchanger struct{}

func (stubExchanger) AuthCodeURL(state string) string {
	return "https://accounts.example.com/consent?state=" + state
}

func (stubExchanger) Exchange(ctx context.Context, code string) (*model.TokenGrant, error) {
	return &model.TokenGrant{
		AccessToken:  "ya29.test",
		RefreshToken: "1//test",
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
	}, nil
}

func (stubExchanger) Refresh(ctx context.Context, refreshToken string) (*model.TokenGrant, error) {
	return &model.TokenGrant{AccessToken: "ya29.refreshed", ExpiresAt: time.Now().UTC().Add(time.Hour)}, nil
}

// newTestServer assembles the full stack: demo content client, real
// services, a real SQLite database in a temp directory.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	db, err := sqliteadapter.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqliteadapter.RunMigrations(db.Writer))

	key := []byte("0123456789abcdef0123456789abcdef")
	credentialStore := sqliteadapter.NewCredentialRepo(db, key)
	authSvc := application.NewAuthService(credentialStore, stubExchanger{}, 5*time.Minute, logger)

	syncSvc := application.NewSyncService(
		fixture.Credentials{},
		fixture.NewClient(),
		sqliteadapter.NewBlogRepo(db),
		sqliteadapter.NewPostRepo(db),
		sqliteadapter.NewPageRepo(db),
		sqliteadapter.NewCommentRepo(db),
		application.NewRenderer(),
		logger,
	)

	sessionSvc := application.NewSessionService(sqliteadapter.NewAdminRepo(db), []byte("test-secret"), time.Hour, logger)
	require.NoError(t, sessionSvc.Bootstrap(context.Background(), "admin", "admin@example.com", "panel password"))

	statsSvc := application.NewStatsService(syncSvc, logger)

	uploadDir := t.TempDir()
	mediaSvc := application.NewMediaService(sqliteadapter.NewMediaRepo(db), uploadDir, logger)

	h := NewHandler(authSvc, sessionSvc, syncSvc, statsSvc, mediaSvc, uploadDir, 1<<20, logger)

	srv := httptest.NewServer(NewServeMux(h, logger))
	t.Cleanup(srv.Close)
	return srv
}

// testEnvelope mirrors the response envelope for assertions.
type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
	Source string `json:"source"`
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, testEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env testEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	status, env := doRequest(t, srv, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Username: "admin",
		Password: "panel password",
	})
	require.Equal(t, http.StatusOK, status)

	var payload LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.NotEmpty(t, payload.Token)
	return payload.Token
}

func TestHandler_Health(t *testing.T) {
	srv := newTestServer(t)

	status, env := doRequest(t, srv, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestHandler_LoginAndMe(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	status, env := doRequest(t, srv, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)

	var me AdminResponse
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "admin", me.Username)
	assert.Equal(t, "admin", me.Role)
}

func TestHandler_LoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)

	status, env := doRequest(t, srv, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Username: "admin",
		Password: "not the password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid_login", env.Error.Kind)
}

func TestHandler_ProtectedRoutesRequireBearerToken(t *testing.T) {
	srv := newTestServer(t)

	status, env := doRequest(t, srv, http.MethodGet, "/api/blogs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid_session", env.Error.Kind)

	status, _ = doRequest(t, srv, http.MethodGet, "/api/blogs", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHandler_ListBlogs(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	status, env := doRequest(t, srv, http.MethodGet, "/api/blogs", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "live", env.Source)

	var blogs []BlogResponse
	require.NoError(t, json.Unmarshal(env.Data, &blogs))
	require.Len(t, blogs, 1)
	assert.Equal(t, fixture.DemoBlogID, blogs[0].ID)
}

func TestHandler_GetPostNotFound(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	path := fmt.Sprintf("/api/blogs/%s/posts/no-such-post", fixture.DemoBlogID)
	status, env := doRequest(t, srv, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Kind)
}

func TestHandler_ListPostsRejectsUnknownStatus(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	path := fmt.Sprintf("/api/blogs/%s/posts?status=published", fixture.DemoBlogID)
	status, env := doRequest(t, srv, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation", env.Error.Kind)
}

func TestHandler_CreatePostRendersMarkdown(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	path := fmt.Sprintf("/api/blogs/%s/posts", fixture.DemoBlogID)
	status, env := doRequest(t, srv, http.MethodPost, path, token, PostRequest{
		Title:   "From markdown",
		Content: "# Hello\n\n<script>alert(1)</script>",
		Format:  "markdown",
	})
	require.Equal(t, http.StatusCreated, status)

	var post PostResponse
	require.NoError(t, json.Unmarshal(env.Data, &post))
	assert.Contains(t, post.Content, "<h1")
	assert.NotContains(t, post.Content, "<script")
	assert.NotNil(t, post.Labels, "labels serialize as an empty array, not null")
}

func TestHandler_CreatePostRequiresTitle(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	path := fmt.Sprintf("/api/blogs/%s/posts", fixture.DemoBlogID)
	status, _ := doRequest(t, srv, http.MethodPost, path, token, PostRequest{Content: "no title"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandler_CommentModeration(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	path := fmt.Sprintf("/api/blogs/%s/posts/demo-post-1/comments/demo-comment-2/approve", fixture.DemoBlogID)
	status, env := doRequest(t, srv, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusOK, status)

	var comment CommentResponse
	require.NoError(t, json.Unmarshal(env.Data, &comment))
	assert.Equal(t, "live", comment.Status)
}

func TestHandler_BlogStats(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	path := fmt.Sprintf("/api/blogs/%s/stats", fixture.DemoBlogID)
	status, env := doRequest(t, srv, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, status)

	var stats application.BlogStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 3, stats.TotalPosts)
	assert.Equal(t, 2, stats.TotalPages)
	assert.Equal(t, 3, stats.TotalComments)
}

func TestHandler_BlogStatsSeriesRejectsUnknownPeriod(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	path := fmt.Sprintf("/api/blogs/%s/stats/series?period=yearly", fixture.DemoBlogID)
	status, _ := doRequest(t, srv, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHandler_OAuthStatusAndExchange(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	status, env := doRequest(t, srv, http.MethodGet, "/api/oauth/status", token, nil)
	require.Equal(t, http.StatusOK, status)

	var auth application.AuthStatus
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	assert.False(t, auth.Connected)

	status, env = doRequest(t, srv, http.MethodPost, "/api/oauth/exchange", token, ExchangeCodeRequest{Code: "pasted-code"})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	assert.True(t, auth.Connected)

	status, _ = doRequest(t, srv, http.MethodDelete, "/api/oauth", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = doRequest(t, srv, http.MethodGet, "/api/oauth/status", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	assert.False(t, auth.Connected)
}

func TestHandler_ChangePasswordValidation(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	status, env := doRequest(t, srv, http.MethodPost, "/api/auth/password", token, ChangePasswordRequest{
		CurrentPassword: "panel password",
		NewPassword:     "short",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation", env.Error.Kind)
}

func uploadFile(t *testing.T, srv *httptest.Server, token, fileName, contentType, content string) (int, testEnvelope) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/media", &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env testEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestHandler_MediaLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	status, env := uploadFile(t, srv, token, "photo.png", "image/png", "fake png bytes")
	require.Equal(t, http.StatusCreated, status)

	var asset MediaResponse
	require.NoError(t, json.Unmarshal(env.Data, &asset))
	assert.Equal(t, "photo.png", asset.FileName)
	assert.True(t, strings.HasPrefix(asset.URL, "/uploads/"))

	// The stored file is served back.
	resp, err := srv.Client().Get(srv.URL + asset.URL)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "fake png bytes", string(body))

	status, env = doRequest(t, srv, http.MethodGet, "/api/media", token, nil)
	require.Equal(t, http.StatusOK, status)
	var assets []MediaResponse
	require.NoError(t, json.Unmarshal(env.Data, &assets))
	require.Len(t, assets, 1)

	status, _ = doRequest(t, srv, http.MethodDelete, "/api/media/"+asset.ID, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = doRequest(t, srv, http.MethodGet, "/api/media", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &assets))
	assert.Empty(t, assets)
}

func TestHandler_MediaRejectsNonImage(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	status, env := uploadFile(t, srv, token, "tool.exe", "application/octet-stream", "MZ")
	assert.Equal(t, http.StatusUnsupportedMediaType, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "unsupported_media", env.Error.Kind)
}
