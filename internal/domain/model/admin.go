package model

import "time"

// Admin is the administrative account that owns credentials and mirrored
// entities. Its ID doubles as the principal id for all upstream operations.
type Admin struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt hash; never serialized.
	Role         string
	LastLogin    time.Time // Zero until the first successful login.
	CreatedAt    time.Time
}
