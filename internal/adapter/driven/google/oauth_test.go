package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/adiwicaksono/blogpanel/internal/domain/port/driven"
)

// newTestExchanger points an Exchanger at an httptest token server.
func newTestExchanger(t *testing.T, handler http.HandlerFunc) *Exchanger {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewExchangerWithEndpoint("client-id", "client-secret", "urn:ietf:wg:oauth:2.0:oob", oauth2.Endpoint{
		AuthURL:  srv.URL + "/auth",
		TokenURL: srv.URL + "/token",
	})
}

func TestExchanger_AuthCodeURLRequestsOfflineAccess(t *testing.T) {
	ex := NewExchangerWithEndpoint("client-id", "client-secret", "urn:ietf:wg:oauth:2.0:oob", oauth2.Endpoint{
		AuthURL:  "https://auth.example.com/auth",
		TokenURL: "https://auth.example.com/token",
	})

	u := ex.AuthCodeURL("state-123")
	assert.Contains(t, u, "access_type=offline")
	assert.Contains(t, u, "state=state-123")
	assert.Contains(t, u, "scope=")
}

func TestExchanger_ExchangeSuccess(t *testing.T) {
	ex := newTestExchanger(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "the-code", r.Form.Get("code"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "ya29.fresh",
			"refresh_token": "1//refresh",
			"token_type": "Bearer",
			"expires_in": 3600,
			"scope": "https://www.googleapis.com/auth/blogger"
		}`))
	})

	grant, err := ex.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "ya29.fresh", grant.AccessToken)
	assert.Equal(t, "1//refresh", grant.RefreshToken)
	assert.Equal(t, "https://www.googleapis.com/auth/blogger", grant.Scope)
	assert.WithinDuration(t, time.Now().Add(time.Hour), grant.ExpiresAt, time.Minute)
}

func TestExchanger_RefreshSuccess(t *testing.T) {
	ex := newTestExchanger(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "1//refresh", r.Form.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "ya29.refreshed",
			"token_type": "Bearer",
			"expires_in": 3600
		}`))
	})

	grant, err := ex.Refresh(context.Background(), "1//refresh")
	require.NoError(t, err)
	assert.Equal(t, "ya29.refreshed", grant.AccessToken)
}

func TestExchanger_RefreshInvalidGrant(t *testing.T) {
	ex := newTestExchanger(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid_grant", "error_description": "Token has been expired or revoked."}`))
	})

	_, err := ex.Refresh(context.Background(), "1//revoked")
	assert.ErrorIs(t, err, driven.ErrReauthorizationRequired)
}

func TestExchanger_RefreshServerErrorIsTransient(t *testing.T) {
	ex := newTestExchanger(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := ex.Refresh(context.Background(), "1//refresh")
	require.Error(t, err)
	assert.Equal(t, driven.UpstreamTransient, driven.UpstreamKind(err))
}

func TestExchanger_ExchangeRejectedCodeIsAuth(t *testing.T) {
	ex := newTestExchanger(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid_client"}`))
	})

	_, err := ex.Exchange(context.Background(), "bad-code")
	require.Error(t, err)
	assert.Equal(t, driven.UpstreamAuth, driven.UpstreamKind(err))
}
