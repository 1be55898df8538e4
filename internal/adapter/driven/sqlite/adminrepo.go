package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
	"github.com/adiwicaksono/blogpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AdminStore = (*AdminRepo)(nil)

// AdminRepo is the SQLite implementation of the AdminStore port.
type AdminRepo struct {
	db *DB
}

// NewAdminRepo creates a new AdminRepo backed by the given DB.
func NewAdminRepo(db *DB) *AdminRepo {
	return &AdminRepo{db: db}
}

const adminColumns = `id, username, email, password_hash, role, last_login, created_at`

// GetByUsername retrieves an admin account by username. Returns nil, nil
// if none exists.
func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE username = ?`

	admin, err := scanAdmin(r.db.Reader.QueryRowContext(ctx, query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get admin %q: %w", username, err)
	}

	return admin, nil
}

// GetByID retrieves an admin account by id. Returns nil, nil if none exists.
func (r *AdminRepo) GetByID(ctx context.Context, id string) (*model.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = ?`

	admin, err := scanAdmin(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get admin %s: %w", id, err)
	}

	return admin, nil
}

// Create inserts a new admin account.
func (r *AdminRepo) Create(ctx context.Context, admin model.Admin) error {
	const query = `
		INSERT INTO admins (id, username, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		admin.ID, admin.Username, admin.Email, admin.PasswordHash, admin.Role, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("create admin %q: %w", admin.Username, err)
	}

	return nil
}

// Count returns the number of admin accounts.
func (r *AdminRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

// UpdatePassword replaces the stored password hash.
func (r *AdminRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE admins SET password_hash = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password for admin %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("admin %s not found", id)
	}

	return nil
}

// RecordLogin stamps the account's last successful login time.
func (r *AdminRepo) RecordLogin(ctx context.Context, id string) error {
	const query = `UPDATE admins SET last_login = ? WHERE id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("record login for admin %s: %w", id, err)
	}

	return nil
}

func scanAdmin(s scanner) (*model.Admin, error) {
	var admin model.Admin
	var lastLogin *string
	var createdAt string

	err := s.Scan(
		&admin.ID, &admin.Username, &admin.Email, &admin.PasswordHash,
		&admin.Role, &lastLogin, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if admin.LastLogin, err = parseNullableTime(lastLogin); err != nil {
		return nil, fmt.Errorf("parse last_login: %w", err)
	}
	if admin.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &admin, nil
}
