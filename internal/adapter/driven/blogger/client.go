// Package blogger implements the ContentClient port against the Blogger
// v3 REST API.
package blogger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
	"github.com/adiwicaksono/blogpanel/internal/domain/port/driven"
)

const defaultBaseURL = "https://www.googleapis.com/blogger/v3"

// defaultPageSize is the per-request page size for list calls.
const defaultPageSize = 50

// Compile-time interface satisfaction check.
var _ driven.ContentClient = (*Client)(nil)

// TokenProvider yields a valid bearer token for a principal. The
// credential lifecycle service implements this: it refreshes near-expiry
// tokens before handing one out.
type TokenProvider interface {
	AccessToken(ctx context.Context, principalID string) (string, error)
}

// Client implements the driven.ContentClient port with the following
// transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. net/http with a bounded overall timeout
//
// Timeouts and connection failures classify as transient, so the sync
// orchestrator can fall back to the mirror.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenProvider
}

// NewClient creates a Blogger API client with an in-memory ETag cache
// and the given per-request timeout.
func NewClient(tokens TokenProvider, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   timeout,
		},
		baseURL: defaultBaseURL,
		tokens:  tokens,
	}
}

// NewClientWithBaseURL creates a Client against a custom base URL with a
// custom http.Client. This constructor is intended for testing, allowing
// injection of an httptest server.
func NewClientWithBaseURL(tokens TokenProvider, httpClient *http.Client, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
	}
}

// do issues one authenticated request and decodes the JSON response into
// out (when non-nil). Failures are classified into the upstream taxonomy.
func (c *Client) do(ctx context.Context, principalID, method, path string, query url.Values, body, out any, op string) error {
	token, err := c.tokens.AccessToken(ctx, principalID)
	if err != nil {
		// Credential errors pass through unclassified; they are not
		// upstream failures and must never trigger cache fallback.
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &driven.UpstreamError{Kind: driven.UpstreamTransient, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return classifyResponse(op, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &driven.UpstreamError{
				Kind: driven.UpstreamTransient,
				Op:   op,
				Err:  fmt.Errorf("decode response: %w", err),
			}
		}
	}

	return nil
}

// apiError is the Blogger error envelope.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// classifyResponse maps an HTTP error response onto the upstream taxonomy.
// Google reports quota exhaustion as 403 with a rate-limit reason, so 403
// is inspected before being treated as an authorization failure.
func classifyResponse(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var parsed apiError
	_ = json.Unmarshal(body, &parsed)

	msg := parsed.Error.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}

	kind := driven.UpstreamTransient
	switch {
	case resp.StatusCode == http.StatusNotFound:
		kind = driven.UpstreamNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		kind = driven.UpstreamRateLimited
	case resp.StatusCode == http.StatusForbidden && isQuotaReason(parsed):
		kind = driven.UpstreamRateLimited
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		kind = driven.UpstreamAuth
	}

	return &driven.UpstreamError{
		Kind:       kind,
		Op:         op,
		StatusCode: resp.StatusCode,
		Err:        fmt.Errorf("blogger api: %s", msg),
	}
}

func isQuotaReason(parsed apiError) bool {
	for _, e := range parsed.Error.Errors {
		switch e.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded", "quotaExceeded", "dailyLimitExceeded":
			return true
		}
	}
	return false
}

// ListBlogs retrieves all blogs of the authorized user and maps them to
// domain types.
func (c *Client) ListBlogs(ctx context.Context, principalID string) ([]model.Blog, error) {
	var list blogList
	if err := c.do(ctx, principalID, http.MethodGet, "/users/self/blogs", nil, nil, &list, "list blogs"); err != nil {
		return nil, err
	}

	blogs := make([]model.Blog, 0, len(list.Items))
	for _, b := range list.Items {
		blogs = append(blogs, mapBlog(b, principalID))
	}

	return blogs, nil
}

// GetBlog retrieves a single blog by id.
func (c *Client) GetBlog(ctx context.Context, principalID, blogID string) (*model.Blog, error) {
	var b blogResource
	if err := c.do(ctx, principalID, http.MethodGet, "/blogs/"+url.PathEscape(blogID), nil, nil, &b, "get blog"); err != nil {
		return nil, err
	}

	blog := mapBlog(b, principalID)
	return &blog, nil
}
