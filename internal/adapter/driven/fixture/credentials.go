package fixture

import (
	"context"
	"time"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

// Credentials is a credential checker that always reports a valid grant.
// Demo mode has no OAuth flow, so the sync orchestrator runs against a
// synthetic never-expiring credential instead.
type Credentials struct{}

// EnsureValid returns a synthetic active credential for the principal.
func (Credentials) EnsureValid(ctx context.Context, principalID string) (*model.Credential, error) {
	return &model.Credential{
		PrincipalID: principalID,
		AccessToken: "demo-token",
		ExpiresAt:   time.Now().UTC().Add(24 * time.Hour),
		Active:      true,
	}, nil
}
