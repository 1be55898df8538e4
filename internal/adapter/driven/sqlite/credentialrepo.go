package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
	"github.com/adiwicaksono/blogpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port.
// Access and refresh tokens are encrypted with AES-256-GCM before write
// and decrypted after read.
type CredentialRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil when encryption is disabled.
}

// NewCredentialRepo creates a new CredentialRepo. key must be 32 bytes for
// AES-256-GCM, or nil to disable credential storage (all operations will
// return ErrEncryptionKeyNotSet).
func NewCredentialRepo(db *DB, key []byte) *CredentialRepo {
	return &CredentialRepo{db: db, key: key}
}

const credentialColumns = `id, principal_id, access_token, refresh_token, expires_at,
	scope, active, last_refreshed, created_at, updated_at`

// GetActive returns the active credential for the principal, or (nil, nil)
// when none exists.
func (r *CredentialRepo) GetActive(ctx context.Context, principalID string) (*model.Credential, error) {
	if r.key == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE principal_id = ? AND active = 1`

	cred, err := r.scanCredential(r.db.Reader.QueryRowContext(ctx, query, principalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active credential for %q: %w", principalID, err)
	}

	return cred, nil
}

// Create inserts a new credential and deactivates all prior credentials for
// the same principal in a single transaction, so the single-active invariant
// holds at every observable point.
func (r *CredentialRepo) Create(ctx context.Context, cred model.Credential) (*model.Credential, error) {
	accessEnc, err := r.encrypt(cred.AccessToken)
	if err != nil {
		return nil, err
	}
	refreshEnc, err := r.encrypt(cred.RefreshToken)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin credential insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`UPDATE credentials SET active = 0, updated_at = ? WHERE principal_id = ? AND active = 1`,
		time.Now().UTC(), cred.PrincipalID,
	)
	if err != nil {
		return nil, fmt.Errorf("deactivate prior credentials for %q: %w", cred.PrincipalID, err)
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO credentials (principal_id, access_token, refresh_token, expires_at, scope, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		cred.PrincipalID, accessEnc, refreshEnc, cred.ExpiresAt.UTC(), cred.Scope, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert credential for %q: %w", cred.PrincipalID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("credential insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit credential insert: %w", err)
	}

	stored := cred
	stored.ID = id
	stored.Active = true
	stored.CreatedAt = now
	stored.UpdatedAt = now
	return &stored, nil
}

// UpdateTokens mutates the identified credential in place after a
// successful refresh. The refresh token is only replaced when the grant
// carries a rotated one.
func (r *CredentialRepo) UpdateTokens(ctx context.Context, id int64, grant model.TokenGrant) error {
	accessEnc, err := r.encrypt(grant.AccessToken)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	if grant.RefreshToken != "" {
		refreshEnc, err := r.encrypt(grant.RefreshToken)
		if err != nil {
			return err
		}
		_, err = r.db.Writer.ExecContext(ctx, `
			UPDATE credentials
			SET access_token = ?, refresh_token = ?, expires_at = ?, last_refreshed = ?, updated_at = ?
			WHERE id = ?`,
			accessEnc, refreshEnc, grant.ExpiresAt.UTC(), now, now, id,
		)
		if err != nil {
			return fmt.Errorf("update credential %d tokens: %w", id, err)
		}
		return nil
	}

	_, err = r.db.Writer.ExecContext(ctx, `
		UPDATE credentials
		SET access_token = ?, expires_at = ?, last_refreshed = ?, updated_at = ?
		WHERE id = ?`,
		accessEnc, grant.ExpiresAt.UTC(), now, now, id,
	)
	if err != nil {
		return fmt.Errorf("update credential %d tokens: %w", id, err)
	}
	return nil
}

// Deactivate soft-deactivates the active credential for the principal.
// A principal with no active credential is not an error.
func (r *CredentialRepo) Deactivate(ctx context.Context, principalID string) error {
	_, err := r.db.Writer.ExecContext(ctx,
		`UPDATE credentials SET active = 0, updated_at = ? WHERE principal_id = ? AND active = 1`,
		time.Now().UTC(), principalID,
	)
	if err != nil {
		return fmt.Errorf("deactivate credential for %q: %w", principalID, err)
	}
	return nil
}

// ActiveCount returns the number of active credentials for the principal.
// Exposed for invariant checks in tests and diagnostics.
func (r *CredentialRepo) ActiveCount(ctx context.Context, principalID string) (int, error) {
	var n int
	err := r.db.Reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM credentials WHERE principal_id = ? AND active = 1`, principalID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active credentials for %q: %w", principalID, err)
	}
	return n, nil
}

func (r *CredentialRepo) scanCredential(s scanner) (*model.Credential, error) {
	var cred model.Credential
	var accessEnc, refreshEnc string
	var active int
	var expiresAt, createdAt, updatedAt string
	var lastRefreshed *string

	err := s.Scan(
		&cred.ID, &cred.PrincipalID, &accessEnc, &refreshEnc, &expiresAt,
		&cred.Scope, &active, &lastRefreshed, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	cred.Active = active != 0

	if cred.AccessToken, err = r.decrypt(accessEnc); err != nil {
		return nil, fmt.Errorf("decrypt access token: %w", err)
	}
	if cred.RefreshToken, err = r.decrypt(refreshEnc); err != nil {
		return nil, fmt.Errorf("decrypt refresh token: %w", err)
	}

	if cred.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}
	if cred.LastRefreshed, err = parseNullableTime(lastRefreshed); err != nil {
		return nil, fmt.Errorf("parse last_refreshed: %w", err)
	}
	if cred.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if cred.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &cred, nil
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded
// string containing the nonce (12 bytes) prepended to the ciphertext.
func (r *CredentialRepo) encrypt(plaintext string) (string, error) {
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext.
func (r *CredentialRepo) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}
