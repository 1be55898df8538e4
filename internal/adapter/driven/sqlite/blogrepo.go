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
var _ driven.BlogStore = (*BlogRepo)(nil)

// BlogRepo is the SQLite implementation of the BlogStore port.
type BlogRepo struct {
	db *DB
}

// NewBlogRepo creates a new BlogRepo backed by the given DB.
func NewBlogRepo(db *DB) *BlogRepo {
	return &BlogRepo{db: db}
}

const blogColumns = `id, external_id, principal_id, name, description, url, status,
	post_count, page_count, published, updated, last_synced`

// Upsert inserts or replaces a mirrored blog keyed by (external_id,
// principal_id) and stamps last_synced.
func (r *BlogRepo) Upsert(ctx context.Context, blog model.Blog) error {
	const query = `
		INSERT INTO blogs (
			external_id, principal_id, name, description, url, status,
			post_count, page_count, published, updated, last_synced
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id, principal_id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			url = excluded.url,
			status = excluded.status,
			post_count = excluded.post_count,
			page_count = excluded.page_count,
			published = excluded.published,
			updated = excluded.updated,
			last_synced = excluded.last_synced
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		blog.ExternalID, blog.PrincipalID, blog.Name, blog.Description, blog.URL, string(blog.Status),
		blog.PostCount, blog.PageCount, blog.Published.UTC(), blog.Updated.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert blog %s: %w", blog.ExternalID, err)
	}

	return nil
}

// Get retrieves a mirrored blog. Returns nil, nil if none exists.
func (r *BlogRepo) Get(ctx context.Context, principalID, externalID string) (*model.Blog, error) {
	query := `SELECT ` + blogColumns + ` FROM blogs WHERE principal_id = ? AND external_id = ?`

	blog, err := scanBlog(r.db.Reader.QueryRowContext(ctx, query, principalID, externalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get blog %s: %w", externalID, err)
	}

	return blog, nil
}

// ListByPrincipal returns all mirrored blogs for the principal, ordered by name.
func (r *BlogRepo) ListByPrincipal(ctx context.Context, principalID string) ([]model.Blog, error) {
	query := `SELECT ` + blogColumns + ` FROM blogs WHERE principal_id = ? ORDER BY name`

	rows, err := r.db.Reader.QueryContext(ctx, query, principalID)
	if err != nil {
		return nil, fmt.Errorf("query blogs: %w", err)
	}
	defer rows.Close()

	var blogs []model.Blog
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blog: %w", err)
		}
		blogs = append(blogs, *blog)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blogs: %w", err)
	}

	return blogs, nil
}

func scanBlog(s scanner) (*model.Blog, error) {
	var blog model.Blog
	var status string
	var published, updated, lastSynced string

	err := s.Scan(
		&blog.ID, &blog.ExternalID, &blog.PrincipalID, &blog.Name, &blog.Description,
		&blog.URL, &status, &blog.PostCount, &blog.PageCount,
		&published, &updated, &lastSynced,
	)
	if err != nil {
		return nil, err
	}

	blog.Status = model.BlogStatus(status)

	if blog.Published, err = parseTime(published); err != nil {
		return nil, fmt.Errorf("parse published: %w", err)
	}
	if blog.Updated, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated: %w", err)
	}
	if blog.LastSynced, err = parseTime(lastSynced); err != nil {
		return nil, fmt.Errorf("parse last_synced: %w", err)
	}

	return &blog, nil
}
