// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Mode selects the upstream content backend.
type Mode string

const (
	// ModeLive talks to the real blogging platform API.
	ModeLive Mode = "live"
	// ModeDemo serves seeded in-memory content; no credentials needed.
	ModeDemo Mode = "demo"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	DBPath     string
	Mode       Mode

	// OAuth client for the live upstream. Optional in demo mode.
	OAuthClientID     string
	OAuthClientSecret string
	OAuthRedirectURL  string

	// SecretKey encrypts credentials at rest (32 bytes, hex-encoded in
	// the environment). Empty disables the live credential store.
	SecretKey []byte

	// SessionSecret signs admin session tokens. Required.
	SessionSecret []byte
	SessionTTL    time.Duration

	UploadDir      string
	MaxUploadBytes int64

	UpstreamTimeout    time.Duration
	TokenRefreshBuffer time.Duration

	// Initial admin account, created only when the admins table is empty.
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from environment variables and returns a
// validated Config. BLOGPANEL_SESSION_SECRET is required. OAuth client
// settings (BLOGPANEL_OAUTH_CLIENT_ID, BLOGPANEL_OAUTH_CLIENT_SECRET,
// BLOGPANEL_OAUTH_REDIRECT_URL) and BLOGPANEL_SECRET_KEY are required in
// live mode only. Optional variables with defaults:
// BLOGPANEL_LISTEN_ADDR (127.0.0.1:8080), BLOGPANEL_DB_PATH
// (blogpanel.db), BLOGPANEL_MODE (live), BLOGPANEL_SESSION_TTL (24h),
// BLOGPANEL_UPLOAD_DIR (uploads), BLOGPANEL_MAX_UPLOAD_BYTES (10485760),
// BLOGPANEL_UPSTREAM_TIMEOUT (10s), BLOGPANEL_TOKEN_REFRESH_BUFFER (5m).
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:         "127.0.0.1:8080",
		DBPath:             "blogpanel.db",
		Mode:               ModeLive,
		SessionTTL:         24 * time.Hour,
		UploadDir:          "uploads",
		MaxUploadBytes:     10 << 20,
		UpstreamTimeout:    10 * time.Second,
		TokenRefreshBuffer: 5 * time.Minute,
		AdminUsername:      "admin",
	}

	if v, ok := os.LookupEnv("BLOGPANEL_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("BLOGPANEL_DB_PATH"); ok {
		cfg.DBPath = v
	}

	if v, ok := os.LookupEnv("BLOGPANEL_MODE"); ok {
		switch Mode(v) {
		case ModeLive, ModeDemo:
			cfg.Mode = Mode(v)
		default:
			return nil, fmt.Errorf("BLOGPANEL_MODE must be %q or %q, got %q", ModeLive, ModeDemo, v)
		}
	}

	cfg.OAuthClientID = os.Getenv("BLOGPANEL_OAUTH_CLIENT_ID")
	cfg.OAuthClientSecret = os.Getenv("BLOGPANEL_OAUTH_CLIENT_SECRET")
	cfg.OAuthRedirectURL = os.Getenv("BLOGPANEL_OAUTH_REDIRECT_URL")

	if v := os.Getenv("BLOGPANEL_SECRET_KEY"); v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("BLOGPANEL_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("BLOGPANEL_SECRET_KEY must decode to 32 bytes, got %d", len(key))
		}
		cfg.SecretKey = key
	}

	secret := os.Getenv("BLOGPANEL_SESSION_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("BLOGPANEL_SESSION_SECRET is required")
	}
	cfg.SessionSecret = []byte(secret)

	if v, ok := os.LookupEnv("BLOGPANEL_SESSION_TTL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("BLOGPANEL_SESSION_TTL has invalid duration %q: %w", v, err)
		}
		cfg.SessionTTL = parsed
	}

	if v, ok := os.LookupEnv("BLOGPANEL_UPLOAD_DIR"); ok {
		cfg.UploadDir = v
	}
	if v, ok := os.LookupEnv("BLOGPANEL_MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("BLOGPANEL_MAX_UPLOAD_BYTES must be a positive integer, got %q", v)
		}
		cfg.MaxUploadBytes = n
	}

	if v, ok := os.LookupEnv("BLOGPANEL_UPSTREAM_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("BLOGPANEL_UPSTREAM_TIMEOUT has invalid duration %q: %w", v, err)
		}
		cfg.UpstreamTimeout = parsed
	}

	if v, ok := os.LookupEnv("BLOGPANEL_TOKEN_REFRESH_BUFFER"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("BLOGPANEL_TOKEN_REFRESH_BUFFER has invalid duration %q: %w", v, err)
		}
		cfg.TokenRefreshBuffer = parsed
	}

	if v, ok := os.LookupEnv("BLOGPANEL_ADMIN_USERNAME"); ok {
		cfg.AdminUsername = v
	}
	cfg.AdminEmail = os.Getenv("BLOGPANEL_ADMIN_EMAIL")
	cfg.AdminPassword = os.Getenv("BLOGPANEL_ADMIN_PASSWORD")

	if cfg.Mode == ModeLive {
		if cfg.OAuthClientID == "" || cfg.OAuthClientSecret == "" {
			return nil, fmt.Errorf("BLOGPANEL_OAUTH_CLIENT_ID and BLOGPANEL_OAUTH_CLIENT_SECRET are required in live mode")
		}
		if len(cfg.SecretKey) == 0 {
			return nil, fmt.Errorf("BLOGPANEL_SECRET_KEY is required in live mode")
		}
	}

	return cfg, nil
}
