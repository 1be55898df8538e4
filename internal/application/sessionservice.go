package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
	"github.com/adiwicaksono/blogpanel/internal/domain/port/driven"
)

// ErrInvalidLogin is returned for a wrong username or password. The two
// cases are deliberately indistinguishable to the caller.
var ErrInvalidLogin = errors.New("invalid username or password")

// ErrInvalidSession is returned for a missing, malformed, expired, or
// otherwise unverifiable session token.
var ErrInvalidSession = errors.New("invalid session token")

// sessionClaims is the JWT payload of an admin session.
type sessionClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// SessionService issues and verifies admin session tokens (HS256 JWTs)
// and manages account passwords.
type SessionService struct {
	admins driven.AdminStore
	secret []byte
	ttl    time.Duration
	logger *slog.Logger

	now func() time.Time // Overridable in tests.
}

// NewSessionService creates a SessionService signing tokens with secret
// and expiring them after ttl.
func NewSessionService(admins driven.AdminStore, secret []byte, ttl time.Duration, logger *slog.Logger) *SessionService {
	return &SessionService{
		admins: admins,
		secret: secret,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Login verifies the password and returns a signed session token with
// the account it belongs to.
func (s *SessionService) Login(ctx context.Context, username, password string) (string, *model.Admin, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("load admin: %w", err)
	}
	if admin == nil {
		// Burn a bcrypt comparison anyway so a missing username does not
		// return measurably faster than a wrong password.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$invalidinvalidinvalidinvalidinvalidinvalidinvalidinval"), []byte(password))
		return "", nil, ErrInvalidLogin
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("failed login attempt", "username", username)
		return "", nil, ErrInvalidLogin
	}

	now := s.now()
	claims := sessionClaims{
		Username: admin.Username,
		Role:     admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			Issuer:    "blogpanel",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}

	if err := s.admins.RecordLogin(ctx, admin.ID); err != nil {
		s.logger.Error("failed to record login", "username", username, "error", err)
	}

	s.logger.Info("admin logged in", "username", username)

	return token, admin, nil
}

// Verify parses and validates a session token and resolves its account.
func (s *SessionService) Verify(ctx context.Context, token string) (*model.Admin, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	admin, err := s.admins.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}
	if admin == nil {
		// Deleted account with a still-unexpired token.
		return nil, ErrInvalidSession
	}

	return admin, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *SessionService) ChangePassword(ctx context.Context, adminID, current, next string) error {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return fmt.Errorf("load admin: %w", err)
	}
	if admin == nil {
		return ErrInvalidSession
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidLogin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.admins.UpdatePassword(ctx, adminID, string(hash)); err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	s.logger.Info("admin password changed", "username", admin.Username)

	return nil
}

// Bootstrap creates the initial admin account when none exists yet. It
// is a no-op on an already-populated database.
func (s *SessionService) Bootstrap(ctx context.Context, username, email, password string) error {
	n, err := s.admins.Count(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := model.Admin{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         "admin",
	}

	if err := s.admins.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	s.logger.Info("bootstrapped initial admin account", "username", username)

	return nil
}
