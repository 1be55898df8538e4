package driven

import (
	"errors"
	"fmt"
)

// ErrNoCredential is returned when a principal has no active credential.
// Authorization must be bootstrapped via the authorization-code exchange
// before any upstream operation can run.
var ErrNoCredential = errors.New("no active credential: authorization required")

// ErrReauthorizationRequired is returned when the authorization server
// rejects the stored refresh token. The credential is unusable and the
// principal must repeat the authorization-code exchange.
var ErrReauthorizationRequired = errors.New("refresh token rejected: reauthorization required")

// ErrEncryptionKeyNotSet is returned by CredentialStore operations when
// BLOGPANEL_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set BLOGPANEL_SECRET_KEY")

// UpstreamErrorKind classifies upstream API failures so the sync
// orchestrator can decide cache-fallback eligibility.
type UpstreamErrorKind string

const (
	// UpstreamAuth: the upstream rejected our access token. Should not
	// occur when the credential lifecycle contract is honored.
	UpstreamAuth UpstreamErrorKind = "auth"
	// UpstreamNotFound: the entity genuinely does not exist upstream.
	// Never eligible for cache fallback.
	UpstreamNotFound UpstreamErrorKind = "not_found"
	// UpstreamRateLimited: the upstream throttled the request (429).
	UpstreamRateLimited UpstreamErrorKind = "rate_limited"
	// UpstreamTransient: timeout, connection failure, or 5xx.
	UpstreamTransient UpstreamErrorKind = "transient"
)

// UpstreamError wraps a failed upstream call with its classification.
type UpstreamError struct {
	Kind       UpstreamErrorKind
	Op         string // e.g. "list posts"
	StatusCode int    // 0 when no HTTP response was received.
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream %s: %s (status %d): %v", e.Kind, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream %s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// UpstreamKind returns the classification of err, or "" if err is not an
// UpstreamError.
func UpstreamKind(err error) UpstreamErrorKind {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return ""
}

// IsUpstreamNotFound reports whether err is a classified not-found failure.
func IsUpstreamNotFound(err error) bool {
	return UpstreamKind(err) == UpstreamNotFound
}

// FallbackEligible reports whether the mirror may be served in place of
// this failure. Only transient and rate-limit failures qualify; not-found
// and auth failures must propagate.
func FallbackEligible(err error) bool {
	switch UpstreamKind(err) {
	case UpstreamTransient, UpstreamRateLimited:
		return true
	default:
		return false
	}
}
