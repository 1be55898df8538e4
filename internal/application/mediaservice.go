package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/adiwicaksono/blogpanel/internal/domain/model"
	"github.com/adiwicaksono/blogpanel/internal/domain/port/driven"
)

// ErrUnsupportedMediaType is returned for uploads outside the accepted
// image types.
var ErrUnsupportedMediaType = errors.New("unsupported media type: only images are accepted")

var allowedMediaTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// MediaService manages the content library: uploaded files on disk plus
// their index in the media store. Stored file names are uuid-prefixed so
// repeated uploads of the same name never collide.
type MediaService struct {
	store  driven.MediaStore
	dir    string
	logger *slog.Logger
}

// NewMediaService creates a MediaService storing files under dir. The
// directory is created on first use.
func NewMediaService(store driven.MediaStore, dir string, logger *slog.Logger) *MediaService {
	return &MediaService{store: store, dir: dir, logger: logger}
}

// Save streams an upload to disk and records it in the library index.
// Size limits are the caller's concern (the HTTP layer caps the request
// body); Save stores whatever the reader yields.
func (s *MediaService) Save(ctx context.Context, fileName, contentType string, r io.Reader) (*model.MediaAsset, error) {
	if !allowedMediaTypes[contentType] {
		return nil, ErrUnsupportedMediaType
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	id := uuid.NewString()
	storedName := id + filepath.Ext(fileName)
	path := filepath.Join(s.dir, storedName)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}

	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rerr := os.Remove(path); rerr != nil {
			s.logger.Error("failed to remove partial upload", "path", path, "error", rerr)
		}
		return nil, fmt.Errorf("write upload: %w", err)
	}

	asset := model.MediaAsset{
		ID:          id,
		FileName:    fileName,
		StoredName:  storedName,
		ContentType: contentType,
		SizeBytes:   size,
		UploadedAt:  time.Now().UTC(),
	}

	if err := s.store.Insert(ctx, asset); err != nil {
		if rerr := os.Remove(path); rerr != nil {
			s.logger.Error("failed to remove orphaned upload", "path", path, "error", rerr)
		}
		return nil, fmt.Errorf("index upload: %w", err)
	}

	s.logger.Info("media uploaded",
		"id", id, "file_name", fileName, "size_bytes", size)

	return &asset, nil
}

// List returns all library entries, newest first.
func (s *MediaService) List(ctx context.Context) ([]model.MediaAsset, error) {
	return s.store.List(ctx)
}

// Delete removes a library entry and its file. A missing file is logged,
// not fatal: the index entry is gone either way.
func (s *MediaService) Delete(ctx context.Context, id string) error {
	asset, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load media asset: %w", err)
	}
	if asset == nil {
		return fmt.Errorf("media asset %s not found", id)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	path := filepath.Join(s.dir, asset.StoredName)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Error("failed to remove media file", "path", path, "error", err)
	}

	s.logger.Info("media deleted", "id", id, "file_name", asset.FileName)

	return nil
}
