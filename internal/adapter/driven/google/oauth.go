// Package google implements the OAuthExchanger port against Google's
// OAuth 2.0 authorization server using golang.org/x/oauth2.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
	"github.com/adiwicaksono/blogpanel/internal/domain/port/driven"
)

// BloggerScope is the OAuth scope granting full Blogger access.
const BloggerScope = "https://www.googleapis.com/auth/blogger"

// Endpoint is Google's OAuth 2.0 endpoint pair.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// Compile-time interface satisfaction check.
var _ driven.OAuthExchanger = (*Exchanger)(nil)

// Exchanger implements the OAuthExchanger port: authorization-code
// exchange and refresh-token grants against Google's token endpoint.
type Exchanger struct {
	cfg *oauth2.Config
}

// NewExchanger creates an Exchanger for the given OAuth client.
func NewExchanger(clientID, clientSecret, redirectURL string) *Exchanger {
	return NewExchangerWithEndpoint(clientID, clientSecret, redirectURL, Endpoint)
}

// NewExchangerWithEndpoint creates an Exchanger against a custom endpoint.
// This constructor is intended for testing, allowing injection of an
// httptest token server.
func NewExchangerWithEndpoint(clientID, clientSecret, redirectURL string, endpoint oauth2.Endpoint) *Exchanger {
	return &Exchanger{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{BloggerScope},
			Endpoint:     endpoint,
		},
	}
}

// AuthCodeURL returns the consent URL for the out-of-band authorization
// flow. offline access and forced consent ensure a refresh token is issued
// even on repeat authorizations.
func (e *Exchanger) AuthCodeURL(state string) string {
	return e.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for the initial token pair.
func (e *Exchanger) Exchange(ctx context.Context, code string) (*model.TokenGrant, error) {
	tok, err := e.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, classify("exchange authorization code", err)
	}
	return grantFromToken(tok), nil
}

// Refresh trades a refresh token for a new access token. A rejected
// refresh token surfaces as ErrReauthorizationRequired.
func (e *Exchanger) Refresh(ctx context.Context, refreshToken string) (*model.TokenGrant, error) {
	ts := e.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	tok, err := ts.Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.ErrorCode == "invalid_grant" {
			return nil, fmt.Errorf("refresh grant: %w", driven.ErrReauthorizationRequired)
		}
		return nil, classify("refresh access token", err)
	}

	return grantFromToken(tok), nil
}

// classify maps token-endpoint failures onto the upstream error taxonomy.
func classify(op string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}

		kind := driven.UpstreamTransient
		switch {
		case status == http.StatusTooManyRequests:
			kind = driven.UpstreamRateLimited
		case status >= 400 && status < 500:
			kind = driven.UpstreamAuth
		}

		return &driven.UpstreamError{Kind: kind, Op: op, StatusCode: status, Err: err}
	}

	// No HTTP response at all: network failure or timeout.
	return &driven.UpstreamError{Kind: driven.UpstreamTransient, Op: op, Err: err}
}

// grantFromToken converts an oauth2 token into the domain TokenGrant.
// RefreshToken is empty when the server did not rotate it.
func grantFromToken(tok *oauth2.Token) *model.TokenGrant {
	scope, _ := tok.Extra("scope").(string)

	return &model.TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry.UTC(),
		Scope:        scope,
	}
}
