package model

// BlogStatus represents the upstream state of a blog.
type BlogStatus string

const (
	BlogStatusLive    BlogStatus = "LIVE"
	BlogStatusDeleted BlogStatus = "DELETED"
)

// PostStatus represents the publication state of a post or page.
type PostStatus string

const (
	PostStatusLive      PostStatus = "live"
	PostStatusDraft     PostStatus = "draft"
	PostStatusScheduled PostStatus = "scheduled"
)

// CommentStatus represents the moderation state of a comment.
type CommentStatus string

const (
	CommentStatusPending CommentStatus = "pending"
	CommentStatusLive    CommentStatus = "live"
	CommentStatusSpam    CommentStatus = "spam"
)

// Source tags where a fetch result came from: the upstream API or the
// local mirror serving as a degraded-mode fallback.
type Source string

const (
	SourceLive  Source = "live"
	SourceCache Source = "cache"
)

// ContentFormat identifies the markup of a submitted post or page body.
type ContentFormat string

const (
	ContentFormatHTML     ContentFormat = "html"
	ContentFormatMarkdown ContentFormat = "markdown"
)
