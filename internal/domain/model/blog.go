package model

import "time"

// Blog is a mirrored copy of an upstream blog, keyed by
// (ExternalID, PrincipalID).
type Blog struct {
	ID          int64
	ExternalID  string
	PrincipalID string
	Name        string
	Description string
	URL         string
	Status      BlogStatus
	PostCount   int
	PageCount   int
	Published   time.Time
	Updated     time.Time
	LastSynced  time.Time // Set by the mirror store on every write-through.
}
