package application

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

// Renderer normalizes client-supplied draft content to sanitized HTML
// before it reaches the upstream platform. Markdown drafts are rendered
// first; both formats pass through the same sanitizer, so script and
// event-handler injection is stripped regardless of input format.
type Renderer struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewRenderer creates a Renderer with GFM tables/strikethrough enabled
// and a user-generated-content sanitization policy extended to allow
// embedded images.
func NewRenderer() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("width", "height").OnElements("img")

	return &Renderer{
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:   policy,
	}
}

// Render converts draft content in the given format to sanitized HTML.
func (r *Renderer) Render(content string, format model.ContentFormat) (string, error) {
	html := content

	if format == model.ContentFormatMarkdown {
		var buf bytes.Buffer
		if err := r.markdown.Convert([]byte(content), &buf); err != nil {
			return "", fmt.Errorf("render markdown: %w", err)
		}
		html = buf.String()
	}

	return r.policy.Sanitize(html), nil
}
