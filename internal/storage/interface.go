package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxImageSize is the largest post image accepted, in bytes
const MaxImageSize = 5 << 20

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image is too large")
)

// allowedExtensions maps accepted file extensions to their content type
var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// UploadResult contains the result of an image upload
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Image is a validated upload ready to be stored
type Image struct {
	Data        []byte
	Extension   string
	ContentType string
}

// ImageStore stores post images
type ImageStore interface {
	SaveImage(ctx context.Context, img *Image, authorID uint) (*UploadResult, error)
	DeleteImage(ctx context.Context, key string) error
}

// Ensure both backends implement ImageStore
var (
	_ ImageStore = (*S3Store)(nil)
	_ ImageStore = (*LocalStore)(nil)
)

// ReadImage validates a multipart upload by extension, size and content
func ReadImage(header *multipart.FileHeader) (*Image, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return nil, ErrUnsupportedImage
	}
	if header.Size > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	return readImage(file, ext, contentType)
}

func readImage(r io.Reader, ext, contentType string) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	// The bytes must be the image the file name claims
	if http.DetectContentType(data) != contentType {
		return nil, ErrUnsupportedImage
	}

	return &Image{Data: data, Extension: ext, ContentType: contentType}, nil
}

// imageKey builds an object key: posts_images/{year}/{month}/{authorID}/{uuid}{ext}
func imageKey(authorID uint, ext string, now time.Time) string {
	return fmt.Sprintf("posts_images/%d/%02d/%d/%s%s",
		now.Year(), now.Month(), authorID, uuid.New().String(), ext)
}

func newReader(img *Image) io.ReadSeeker {
	return bytes.NewReader(img.Data)
}
