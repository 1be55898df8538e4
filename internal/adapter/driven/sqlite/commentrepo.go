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
var _ driven.CommentStore = (*CommentRepo)(nil)

// CommentRepo is the SQLite implementation of the CommentStore port.
type CommentRepo struct {
	db *DB
}

// NewCommentRepo creates a new CommentRepo backed by the given DB.
func NewCommentRepo(db *DB) *CommentRepo {
	return &CommentRepo{db: db}
}

const commentColumns = `id, external_id, principal_id, blog_id, post_id, author,
	content, status, published, updated, last_synced`

// Upsert inserts or replaces a mirrored comment keyed by (external_id, principal_id).
func (r *CommentRepo) Upsert(ctx context.Context, comment model.Comment) error {
	const query = `
		INSERT INTO comments (
			external_id, principal_id, blog_id, post_id, author,
			content, status, published, updated, last_synced
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id, principal_id) DO UPDATE SET
			blog_id = excluded.blog_id,
			post_id = excluded.post_id,
			author = excluded.author,
			content = excluded.content,
			status = excluded.status,
			published = excluded.published,
			updated = excluded.updated,
			last_synced = excluded.last_synced
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		comment.ExternalID, comment.PrincipalID, comment.BlogID, comment.PostID, comment.Author,
		comment.Content, string(comment.Status), comment.Published.UTC(), comment.Updated.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert comment %s: %w", comment.ExternalID, err)
	}

	return nil
}

// Get retrieves a mirrored comment. Returns nil, nil if none exists.
func (r *CommentRepo) Get(ctx context.Context, principalID, externalID string) (*model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE principal_id = ? AND external_id = ?`

	comment, err := scanComment(r.db.Reader.QueryRowContext(ctx, query, principalID, externalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get comment %s: %w", externalID, err)
	}

	return comment, nil
}

// ListByBlog returns mirrored comments for the blog, newest published
// first, restricted to one post when postID is non-empty.
func (r *CommentRepo) ListByBlog(ctx context.Context, principalID, blogID, postID string) ([]model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE principal_id = ? AND blog_id = ?`
	args := []any{principalID, blogID}

	if postID != "" {
		query += " AND post_id = ?"
		args = append(args, postID)
	}

	query += " ORDER BY published DESC"

	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

// Delete removes a mirrored comment. Missing entries are not an error.
func (r *CommentRepo) Delete(ctx context.Context, principalID, externalID string) error {
	const query = `DELETE FROM comments WHERE principal_id = ? AND external_id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, principalID, externalID); err != nil {
		return fmt.Errorf("delete comment %s: %w", externalID, err)
	}

	return nil
}

func scanComment(s scanner) (*model.Comment, error) {
	var comment model.Comment
	var status string
	var published, updated, lastSynced string

	err := s.Scan(
		&comment.ID, &comment.ExternalID, &comment.PrincipalID, &comment.BlogID, &comment.PostID,
		&comment.Author, &comment.Content, &status,
		&published, &updated, &lastSynced,
	)
	if err != nil {
		return nil, err
	}

	comment.Status = model.CommentStatus(status)

	if comment.Published, err = parseTime(published); err != nil {
		return nil, fmt.Errorf("parse published: %w", err)
	}
	if comment.Updated, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated: %w", err)
	}
	if comment.LastSynced, err = parseTime(lastSynced); err != nil {
		return nil, fmt.Errorf("parse last_synced: %w", err)
	}

	return &comment, nil
}
