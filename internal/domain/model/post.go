package model

import "time"

// Post is a mirrored copy of an upstream blog post, keyed by
// (ExternalID, PrincipalID). BlogID is the external id of the owning blog.
type Post struct {
	ID          int64
	ExternalID  string
	PrincipalID string
	BlogID      string
	Title       string
	Content     string
	Status      PostStatus
	Labels      []string
	Author      string
	URL         string
	ReplyCount  int
	Published   time.Time
	Updated     time.Time
	LastSynced  time.Time
}

// PostDraft is the client-supplied body of a post create or update.
// Content is raw markup in Format; the content renderer normalizes it to
// sanitized HTML before the upstream write.
type PostDraft struct {
	Title   string
	Content string
	Format  ContentFormat
	Labels  []string
	IsDraft bool
}
