package driven

import (
	"context"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

// CredentialStore defines the driven port for OAuth credential persistence.
// The adapter encrypts token values at rest; this interface operates on
// plaintext at the domain boundary.
type CredentialStore interface {
	// GetActive returns the active credential for the principal, or
	// (nil, nil) when none exists.
	GetActive(ctx context.Context, principalID string) (*model.Credential, error)

	// Create inserts a new credential and deactivates all prior
	// credentials for the same principal in one transaction, so the
	// principal never observably holds zero or two active credentials.
	// Returns the stored credential with its assigned ID.
	Create(ctx context.Context, cred model.Credential) (*model.Credential, error)

	// UpdateTokens mutates the identified credential in place after a
	// successful refresh: new access token, expiry, last_refreshed, and
	// the rotated refresh token when the grant carried one.
	UpdateTokens(ctx context.Context, id int64, grant model.TokenGrant) error

	// Deactivate soft-deactivates the active credential for the
	// principal, if any. Used when the upstream reports the credential
	// revoked.
	Deactivate(ctx context.Context, principalID string) error
}
