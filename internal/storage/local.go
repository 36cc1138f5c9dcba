package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore keeps post images on disk under root, served at urlPrefix
type LocalStore struct {
	root      string
	urlPrefix string
}

// NewLocalStore creates a disk image store
func NewLocalStore(root, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &LocalStore{root: root, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}, nil
}

// SaveImage writes a post image to disk
func (s *LocalStore) SaveImage(_ context.Context, img *Image, authorID uint) (*UploadResult, error) {
	key := imageKey(authorID, img.Extension, time.Now().UTC())
	target := filepath.Join(s.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	if err := os.WriteFile(target, img.Data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}

	return &UploadResult{
		Key:         key,
		URL:         path.Join(s.urlPrefix, key),
		ContentType: img.ContentType,
		Size:        int64(len(img.Data)),
	}, nil
}

// DeleteImage removes an image from disk. Missing files are not an error.
func (s *LocalStore) DeleteImage(_ context.Context, key string) error {
	clean := path.Clean("/" + key)
	target := filepath.Join(s.root, filepath.FromSlash(clean))

	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
