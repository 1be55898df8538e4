package model

import "time"

// Page is a mirrored copy of an upstream static page, keyed by
// (ExternalID, PrincipalID).
type Page struct {
	ID          int64
	ExternalID  string
	PrincipalID string
	BlogID      string
	Title       string
	Content     string
	Status      PostStatus
	Author      string
	URL         string
	Published   time.Time
	Updated     time.Time
	LastSynced  time.Time
}

// PageDraft is the client-supplied body of a page create or update.
type PageDraft struct {
	Title   string
	Content string
	Format  ContentFormat
	IsDraft bool
}
