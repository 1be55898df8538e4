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
var _ driven.PageStore = (*PageRepo)(nil)

// PageRepo is the SQLite implementation of the PageStore port.
type PageRepo struct {
	db *DB
}

// NewPageRepo creates a new PageRepo backed by the given DB.
func NewPageRepo(db *DB) *PageRepo {
	return &PageRepo{db: db}
}

const pageColumns = `id, external_id, principal_id, blog_id, title, content, status,
	author, url, published, updated, last_synced`

// Upsert inserts or replaces a mirrored page keyed by (external_id, principal_id).
func (r *PageRepo) Upsert(ctx context.Context, page model.Page) error {
	const query = `
		INSERT INTO pages (
			external_id, principal_id, blog_id, title, content, status,
			author, url, published, updated, last_synced
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id, principal_id) DO UPDATE SET
			blog_id = excluded.blog_id,
			title = excluded.title,
			content = excluded.content,
			status = excluded.status,
			author = excluded.author,
			url = excluded.url,
			published = excluded.published,
			updated = excluded.updated,
			last_synced = excluded.last_synced
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		page.ExternalID, page.PrincipalID, page.BlogID, page.Title, page.Content, string(page.Status),
		page.Author, page.URL, page.Published.UTC(), page.Updated.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert page %s: %w", page.ExternalID, err)
	}

	return nil
}

// Get retrieves a mirrored page. Returns nil, nil if none exists.
func (r *PageRepo) Get(ctx context.Context, principalID, externalID string) (*model.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE principal_id = ? AND external_id = ?`

	page, err := scanPage(r.db.Reader.QueryRowContext(ctx, query, principalID, externalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get page %s: %w", externalID, err)
	}

	return page, nil
}

// ListByBlog returns mirrored pages for the blog, newest published first.
func (r *PageRepo) ListByBlog(ctx context.Context, principalID, blogID string) ([]model.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE principal_id = ? AND blog_id = ? ORDER BY published DESC`

	rows, err := r.db.Reader.QueryContext(ctx, query, principalID, blogID)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var pages []model.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, *page)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}

	return pages, nil
}

// Delete removes a mirrored page. Missing entries are not an error.
func (r *PageRepo) Delete(ctx context.Context, principalID, externalID string) error {
	const query = `DELETE FROM pages WHERE principal_id = ? AND external_id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, principalID, externalID); err != nil {
		return fmt.Errorf("delete page %s: %w", externalID, err)
	}

	return nil
}

func scanPage(s scanner) (*model.Page, error) {
	var page model.Page
	var status string
	var published, updated, lastSynced string

	err := s.Scan(
		&page.ID, &page.ExternalID, &page.PrincipalID, &page.BlogID, &page.Title,
		&page.Content, &status, &page.Author, &page.URL,
		&published, &updated, &lastSynced,
	)
	if err != nil {
		return nil, err
	}

	page.Status = model.PostStatus(status)

	if page.Published, err = parseTime(published); err != nil {
		return nil, fmt.Errorf("parse published: %w", err)
	}
	if page.Updated, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated: %w", err)
	}
	if page.LastSynced, err = parseTime(lastSynced); err != nil {
		return nil, fmt.Errorf("parse last_synced: %w", err)
	}

	return &page, nil
}
