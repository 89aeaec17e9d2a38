// Package objectstore hides the bucket that backs artwork images.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dom/heritage-gallery/internal/config"
	"github.com/dom/heritage-gallery/internal/platform/logger"
)

var ErrObjectNotFound = errors.New("object not found")

// Store persists objects under slash-separated keys.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	// MakePublic grants anonymous read access to the object.
	MakePublic(ctx context.Context, key string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	Close() error
}

// New selects a backend by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (Store, error) {
	switch strings.ToLower(cfg.StorageBackend) {
	case "gcs":
		return NewGCSStore(ctx, GCSOptions{
			Bucket:          cfg.StorageBucket,
			PublicBaseURL:   cfg.StoragePublicBaseURL,
			CredentialsFile: cfg.GCSCredentialsFile,
			Timeout:         cfg.StorageTimeout,
		}, log)
	case "s3":
		return NewS3Store(ctx, S3Options{
			Bucket:        cfg.StorageBucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.StoragePublicBaseURL,
			Timeout:       cfg.StorageTimeout,
		}, log)
	case "", "memory":
		base := cfg.StoragePublicBaseURL
		if base == "" {
			base = "http://localhost:" + cfg.Port + "/objects"
		}
		return NewMemoryStore(base), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
