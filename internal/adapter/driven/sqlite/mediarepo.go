package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
	"github.com/adiwicaksono/blogpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MediaStore = (*MediaRepo)(nil)

// MediaRepo is the SQLite implementation of the MediaStore port.
type MediaRepo struct {
	db *DB
}

// NewMediaRepo creates a new MediaRepo backed by the given DB.
func NewMediaRepo(db *DB) *MediaRepo {
	return &MediaRepo{db: db}
}

const mediaColumns = `id, file_name, stored_name, content_type, size_bytes, uploaded_at`

// Insert adds a new content library entry.
func (r *MediaRepo) Insert(ctx context.Context, asset model.MediaAsset) error {
	const query = `
		INSERT INTO media_assets (id, file_name, stored_name, content_type, size_bytes, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		asset.ID, asset.FileName, asset.StoredName, asset.ContentType, asset.SizeBytes, asset.UploadedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert media asset %s: %w", asset.ID, err)
	}

	return nil
}

// Get retrieves a content library entry. Returns nil, nil if none exists.
func (r *MediaRepo) Get(ctx context.Context, id string) (*model.MediaAsset, error) {
	query := `SELECT ` + mediaColumns + ` FROM media_assets WHERE id = ?`

	asset, err := scanMediaAsset(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get media asset %s: %w", id, err)
	}

	return asset, nil
}

// List returns all content library entries, newest upload first.
func (r *MediaRepo) List(ctx context.Context) ([]model.MediaAsset, error) {
	query := `SELECT ` + mediaColumns + ` FROM media_assets ORDER BY uploaded_at DESC`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query media assets: %w", err)
	}
	defer rows.Close()

	var assets []model.MediaAsset
	for rows.Next() {
		asset, err := scanMediaAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media asset: %w", err)
		}
		assets = append(assets, *asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media assets: %w", err)
	}

	return assets, nil
}

// Delete removes a content library entry. Returns an error if it does not exist.
func (r *MediaRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM media_assets WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete media asset %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("media asset %s not found", id)
	}

	return nil
}

func scanMediaAsset(s scanner) (*model.MediaAsset, error) {
	var asset model.MediaAsset
	var uploadedAt string

	err := s.Scan(
		&asset.ID, &asset.FileName, &asset.StoredName, &asset.ContentType,
		&asset.SizeBytes, &uploadedAt,
	)
	if err != nil {
		return nil, err
	}

	if asset.UploadedAt, err = parseTime(uploadedAt); err != nil {
		return nil, fmt.Errorf("parse uploaded_at: %w", err)
	}

	return &asset, nil
}
