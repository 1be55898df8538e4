package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
	"github.com/adiwicaksono/blogpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PostStore = (*PostRepo)(nil)

// PostRepo is the SQLite implementation of the PostStore port.
type PostRepo struct {
	db *DB
}

// NewPostRepo creates a new PostRepo backed by the given DB.
func NewPostRepo(db *DB) *PostRepo {
	return &PostRepo{db: db}
}

const postColumns = `id, external_id, principal_id, blog_id, title, content, status,
	labels, author, url, reply_count, published, updated, last_synced`

// Upsert inserts or replaces a mirrored post keyed by (external_id,
// principal_id). Labels are serialized as a JSON array in the TEXT column.
func (r *PostRepo) Upsert(ctx context.Context, post model.Post) error {
	const query = `
		INSERT INTO posts (
			external_id, principal_id, blog_id, title, content, status,
			labels, author, url, reply_count, published, updated, last_synced
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id, principal_id) DO UPDATE SET
			blog_id = excluded.blog_id,
			title = excluded.title,
			content = excluded.content,
			status = excluded.status,
			labels = excluded.labels,
			author = excluded.author,
			url = excluded.url,
			reply_count = excluded.reply_count,
			published = excluded.published,
			updated = excluded.updated,
			last_synced = excluded.last_synced
	`

	labels := post.Labels
	if labels == nil {
		labels = []string{}
	}
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}

	_, err = r.db.Writer.ExecContext(ctx, query,
		post.ExternalID, post.PrincipalID, post.BlogID, post.Title, post.Content, string(post.Status),
		string(labelsJSON), post.Author, post.URL, post.ReplyCount,
		post.Published.UTC(), post.Updated.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert post %s: %w", post.ExternalID, err)
	}

	return nil
}

// Get retrieves a mirrored post. Returns nil, nil if none exists.
func (r *PostRepo) Get(ctx context.Context, principalID, externalID string) (*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE principal_id = ? AND external_id = ?`

	post, err := scanPost(r.db.Reader.QueryRowContext(ctx, query, principalID, externalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post %s: %w", externalID, err)
	}

	return post, nil
}

// ListByBlog returns mirrored posts for the blog, newest published first,
// optionally restricted to the given statuses.
func (r *PostRepo) ListByBlog(ctx context.Context, principalID, blogID string, statuses []model.PostStatus) ([]model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE principal_id = ? AND blog_id = ?`
	args := []any{principalID, blogID}

	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		query += " AND status IN (" + strings.Join(placeholders, ", ") + ")"
	}

	query += " ORDER BY published DESC"

	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}

// Delete removes a mirrored post. Missing entries are not an error.
func (r *PostRepo) Delete(ctx context.Context, principalID, externalID string) error {
	const query = `DELETE FROM posts WHERE principal_id = ? AND external_id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, principalID, externalID); err != nil {
		return fmt.Errorf("delete post %s: %w", externalID, err)
	}

	return nil
}

func scanPost(s scanner) (*model.Post, error) {
	var post model.Post
	var status string
	var labelsJSON string
	var published, updated, lastSynced string

	err := s.Scan(
		&post.ID, &post.ExternalID, &post.PrincipalID, &post.BlogID, &post.Title,
		&post.Content, &status, &labelsJSON, &post.Author, &post.URL, &post.ReplyCount,
		&published, &updated, &lastSynced,
	)
	if err != nil {
		return nil, err
	}

	post.Status = model.PostStatus(status)

	if err := json.Unmarshal([]byte(labelsJSON), &post.Labels); err != nil {
		return nil, fmt.Errorf("unmarshal labels: %w", err)
	}

	if post.Published, err = parseTime(published); err != nil {
		return nil, fmt.Errorf("parse published: %w", err)
	}
	if post.Updated, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated: %w", err)
	}
	if post.LastSynced, err = parseTime(lastSynced); err != nil {
		return nil, fmt.Errorf("parse last_synced: %w", err)
	}

	return &post, nil
}
