package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/dom/heritage-gallery/internal/platform/logger"
)

type GCSOptions struct {
	Bucket          string
	PublicBaseURL   string
	CredentialsFile string
	Timeout         time.Duration
}

type gcsStore struct {
	log     *logger.Logger
	client  *storage.Client
	bucket  string
	baseURL string
	timeout time.Duration
}

func NewGCSStore(ctx context.Context, opts GCSOptions, log *logger.Logger) (*gcsStore, error) {
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	clientOpts = append(clientOpts, option.WithScopes(storage.ScopeFullControl))

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	baseURL := opts.PublicBaseURL
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + opts.Bucket
	}

	return &gcsStore{
		log:     log.With("store", "gcs", "bucket", opts.Bucket),
		client:  client,
		bucket:  opts.Bucket,
		baseURL: baseURL,
		timeout: opts.Timeout,
	}, nil
}

func (s *gcsStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (s *gcsStore) MakePublic(ctx context.Context, key string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	acl := s.client.Bucket(s.bucket).Object(key).ACL()
	if err := acl.Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return fmt.Errorf("failed to make %s public: %w", key, err)
	}
	return nil
}

func (s *gcsStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ErrObjectNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete GCS object: %w", err)
	}
	s.log.Debug("deleted object", "key", key)
	return nil
}

func (s *gcsStore) PublicURL(key string) string {
	return joinURL(s.baseURL, key)
}

func (s *gcsStore) Close() error {
	return s.client.Close()
}
