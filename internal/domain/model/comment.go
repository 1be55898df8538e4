package model

import "time"

// Comment is a mirrored copy of an upstream comment, keyed by
// (ExternalID, PrincipalID). BlogID and PostID are external ids.
type Comment struct {
	ID          int64
	ExternalID  string
	PrincipalID string
	BlogID      string
	PostID      string
	Author      string
	Content     string
	Status      CommentStatus
	Published   time.Time
	Updated     time.Time
	LastSynced  time.Time
}
