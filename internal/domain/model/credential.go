package model

import "time"

// Credential holds one OAuth access/refresh token pair for a principal.
// Exactly one credential per principal is active at a time; superseded
// credentials are deactivated, never deleted. Token values are encrypted
// at rest by the store adapter and must never appear in API responses.
type Credential struct {
	ID            int64
	PrincipalID   string
	AccessToken   string
	RefreshToken  string
	ExpiresAt     time.Time
	Scope         string
	Active        bool
	LastRefreshed time.Time // Zero until the first successful refresh.
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RemainingLifetime returns how long the access token is still valid,
// measured from now. Negative when already expired.
func (c Credential) RemainingLifetime(now time.Time) time.Duration {
	return c.ExpiresAt.Sub(now)
}

// NeedsRefresh reports whether the access token is within the refresh
// buffer of its expiry (or past it) and should be refreshed before use.
func (c Credential) NeedsRefresh(now time.Time, buffer time.Duration) bool {
	return c.RemainingLifetime(now) <= buffer
}

// TokenGrant is the result of an authorization-code exchange or a
// refresh-token grant at the authorization server. RefreshToken is empty
// when the server did not rotate it.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Scope        string
}
