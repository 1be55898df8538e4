// Package application wires domain ports into the dashboard's use cases.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
	"github.com/adiwicaksono/blogpanel/internal/domain/port/driven"
)

// AuthService owns the OAuth credential lifecycle: the one-time
// authorization-code exchange, proactive refresh ahead of expiry, and
// persistence of the resulting grants. All upstream calls go through
// EnsureValid first, so the rest of the system never sees an expired
// access token.
type AuthService struct {
	store     driven.CredentialStore
	exchanger driven.OAuthExchanger
	buffer    time.Duration
	logger    *slog.Logger

	// refreshGroup coalesces concurrent refreshes per principal: one
	// refresh grant flies, everyone else waits for its result.
	refreshGroup singleflight.Group

	now func() time.Time // Overridable in tests.
}

// NewAuthService creates an AuthService. buffer is how long before expiry
// a token is refreshed proactively.
func NewAuthService(store driven.CredentialStore, exchanger driven.OAuthExchanger, buffer time.Duration, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:     store,
		exchanger: exchanger,
		buffer:    buffer,
		logger:    logger,
		now:       time.Now,
	}
}

// AuthCodeURL returns the consent URL for the out-of-band authorization
// flow.
func (s *AuthService) AuthCodeURL(state string) string {
	return s.exchanger.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for a token pair and persists
// it as the principal's active credential, deactivating any prior one.
func (s *AuthService) ExchangeCode(ctx context.Context, principalID, code string) (*model.Credential, error) {
	grant, err := s.exchanger.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	if grant.RefreshToken == "" {
		// Without a refresh token the credential dies at first expiry.
		// Google only issues one on offline-access consent; surface the
		// misconfiguration now instead of failing an hour later.
		return nil, errors.New("authorization grant carried no refresh token")
	}

	cred, err := s.store.Create(ctx, model.Credential{
		PrincipalID:  principalID,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresAt:    grant.ExpiresAt,
		Scope:        grant.Scope,
		Active:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("persist credential: %w", err)
	}

	s.logger.Info("authorization completed",
		"principal_id", principalID,
		"expires_at", cred.ExpiresAt)

	return cred, nil
}

// EnsureValid returns a credential whose access token is valid for at
// least the refresh buffer. When the stored token is near expiry it is
// refreshed and persisted first; concurrent callers for the same
// principal share a single refresh. Returns ErrNoCredential when the
// principal has never authorized, and ErrReauthorizationRequired when
// the refresh token has been revoked.
func (s *AuthService) EnsureValid(ctx context.Context, principalID string) (*model.Credential, error) {
	cred, err := s.store.GetActive(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	if cred == nil {
		return nil, driven.ErrNoCredential
	}

	if !cred.NeedsRefresh(s.now(), s.buffer) {
		return cred, nil
	}

	v, err, _ := s.refreshGroup.Do(principalID, func() (any, error) {
		return s.refresh(ctx, principalID)
	})
	if err != nil {
		return nil, err
	}

	return v.(*model.Credential), nil
}

// refresh runs inside the singleflight. It re-reads the credential
// because a previous flight may have refreshed it between this caller's
// staleness check and its turn in the group.
func (s *AuthService) refresh(ctx context.Context, principalID string) (*model.Credential, error) {
	cred, err := s.store.GetActive(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	if cred == nil {
		return nil, driven.ErrNoCredential
	}
	if !cred.NeedsRefresh(s.now(), s.buffer) {
		return cred, nil
	}

	grant, err := s.exchanger.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		if errors.Is(err, driven.ErrReauthorizationRequired) {
			// The grant is dead; deactivate so status reporting and
			// subsequent calls see the principal as unauthorized.
			if derr := s.store.Deactivate(ctx, principalID); derr != nil {
				s.logger.Error("failed to deactivate revoked credential",
					"principal_id", principalID, "error", derr)
			}
			s.logger.Warn("refresh token revoked, reauthorization required",
				"principal_id", principalID)
			return nil, err
		}
		return nil, fmt.Errorf("refresh credential: %w", err)
	}

	if err := s.store.UpdateTokens(ctx, cred.ID, *grant); err != nil {
		return nil, fmt.Errorf("persist refreshed tokens: %w", err)
	}

	cred.AccessToken = grant.AccessToken
	cred.ExpiresAt = grant.ExpiresAt
	cred.LastRefreshed = s.now().UTC()
	if grant.RefreshToken != "" {
		cred.RefreshToken = grant.RefreshToken
	}
	if grant.Scope != "" {
		cred.Scope = grant.Scope
	}

	s.logger.Debug("access token refreshed",
		"principal_id", principalID,
		"expires_at", cred.ExpiresAt)

	return cred, nil
}

// AccessToken returns a bearer token valid for at least the refresh
// buffer. This is the TokenProvider hook the upstream client calls.
func (s *AuthService) AccessToken(ctx context.Context, principalID string) (string, error) {
	cred, err := s.EnsureValid(ctx, principalID)
	if err != nil {
		return "", err
	}
	return cred.AccessToken, nil
}

// Disconnect deactivates the principal's active credential.
func (s *AuthService) Disconnect(ctx context.Context, principalID string) error {
	if err := s.store.Deactivate(ctx, principalID); err != nil {
		return fmt.Errorf("deactivate credential: %w", err)
	}
	s.logger.Info("credential disconnected", "principal_id", principalID)
	return nil
}

// AuthStatus reports credential health without exposing token values.
type AuthStatus struct {
	Connected     bool      `json:"connected"`
	ExpiresAt     time.Time `json:"expiresAt,omitzero"`
	Scope         string    `json:"scope,omitempty"`
	LastRefreshed time.Time `json:"lastRefreshed,omitzero"`
	NeedsRefresh  bool      `json:"needsRefresh"`
}

// Status reports whether the principal holds an active credential and
// how fresh it is. Never returns token values.
func (s *AuthService) Status(ctx context.Context, principalID string) (*AuthStatus, error) {
	cred, err := s.store.GetActive(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	if cred == nil {
		return &AuthStatus{Connected: false}, nil
	}

	return &AuthStatus{
		Connected:     true,
		ExpiresAt:     cred.ExpiresAt,
		Scope:         cred.Scope,
		LastRefreshed: cred.LastRefreshed,
		NeedsRefresh:  cred.NeedsRefresh(s.now(), s.buffer),
	}, nil
}
