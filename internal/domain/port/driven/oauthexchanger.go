package driven

import (
	"context"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
)

// OAuthExchanger defines the driven port for the external authorization
// server: the one-time authorization-code exchange and the refresh grant.
type OAuthExchanger interface {
	// AuthCodeURL returns the consent URL the administrator visits to
	// start the out-of-band authorization flow.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for the initial token pair.
	Exchange(ctx context.Context, code string) (*model.TokenGrant, error)

	// Refresh trades a refresh token for a new access token. Returns
	// ErrReauthorizationRequired when the server rejects the refresh
	// token (revoked or expired grant); transient failures are
	// classified as UpstreamError.
	Refresh(ctx context.Context, refreshToken string) (*model.TokenGrant, error)
}
