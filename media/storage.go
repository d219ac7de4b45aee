// Package media stores uploaded post images.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"blogicum/config"
	"blogicum/constants"

	"github.com/google/uuid"
)

type Storage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Remove(ctx context.Context, key string) error
	// ServeObject writes the object to w, or redirects to where it lives.
	ServeObject(w http.ResponseWriter, r *http.Request, key string)
}

var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// NewImageKey returns a fresh object key for a post image of the given type.
func NewImageKey(contentType string) string {
	ext, ok := AllowedImageTypes[contentType]
	if !ok {
		ext = ".bin"
	}
	return constants.POSTS_IMAGES_PREFIX + uuid.NewString() + ext
}

// URL is the site path an image is served from.
func URL(key string) string {
	if key == "" {
		return ""
	}
	return "/media/" + key
}

// CleanKey rejects keys that would escape the storage root.
func CleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != key || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return cleaned, nil
}

func New(ctx context.Context, cfg config.MediaConfig) (Storage, error) {
	switch cfg.Backend {
	case "local":
		return NewLocal(cfg.Dir)
	case "s3":
		store, err := NewS3(cfg.S3, cfg.PresignTTL)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket %q: %w", cfg.S3.Bucket, err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unsupported media backend %q", cfg.Backend)
}
