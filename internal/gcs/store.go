// Package gcs resolves Cloud Storage objects produced by the generators into
// signed URLs and local mirror files.
package gcs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/patrickmn/go-cache"
)

const (
	// SignedURLTTL is the lifetime of every minted signed URL.
	SignedURLTTL = 100 * time.Hour

	// A signed URL is reused only within signedURLReuseWindow of minting, so
	// every returned URL keeps nearly the full SignedURLTTL.
	signedURLReuseWindow = 5 * time.Minute
	cacheCleanupInterval = 10 * time.Minute
)

// ObjectStore is the subset of object storage the video pipeline needs.
type ObjectStore interface {
	SignedURL(ctx context.Context, bucket, object string) (string, error)
	Download(ctx context.Context, bucket, object, dest string) error
}

// ParseURI splits gs://bucket/path/to/object into bucket and object path.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("not a gs:// uri: %q", uri)
	}
	rest := strings.TrimPrefix(uri, "gs://")
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("gs uri must name a bucket and an object: %q", uri)
	}
	return bucket, object, nil
}

type signedURL struct {
	url      string
	mintedAt time.Time
}

// signFunc mints a signed URL for an object. Swapped in tests.
type signFunc func(bucket, object string, opts *storage.SignedURLOptions) (string, error)

// Store is the production ObjectStore backed by a storage.Client.
type Store struct {
	client *storage.Client
	sign   signFunc
	urls   *cache.Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a Store using Application Default Credentials. Signing
// uses the same credentials (service account key or IAM signBlob).
func NewStore(ctx context.Context, logger *slog.Logger) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	s := newStore(logger)
	s.client = client
	s.sign = func(bucket, object string, opts *storage.SignedURLOptions) (string, error) {
		return client.Bucket(bucket).SignedURL(object, opts)
	}
	return s, nil
}

func newStore(logger *slog.Logger) *Store {
	return &Store{
		urls:   cache.New(signedURLReuseWindow, cacheCleanupInterval),
		logger: logger,
		now:    time.Now,
	}
}

// Close releases the underlying storage client.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// SignedURL returns a V4 read-only URL valid for SignedURLTTL. A URL minted
// for the same object within the last few minutes is returned again.
func (s *Store) SignedURL(ctx context.Context, bucket, object string) (string, error) {
	key := bucket + "/" + object
	now := s.now()
	if v, ok := s.urls.Get(key); ok {
		if cached := v.(signedURL); now.Sub(cached.mintedAt) < signedURLReuseWindow {
			return cached.url, nil
		}
	}

	url, err := s.sign(bucket, object, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: now.Add(SignedURLTTL),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign gs://%s/%s: %w", bucket, object, err)
	}

	s.urls.SetDefault(key, signedURL{url: url, mintedAt: now})
	return url, nil
}

// Download streams the object to dest, creating parent directories. A partial
// file is removed when the copy fails.
func (s *Store) Download(ctx context.Context, bucket, object, dest string) error {
	if s.client == nil {
		return fmt.Errorf("storage client not configured")
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}

	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to open gs://%s/%s: %w", bucket, object, err)
	}
	defer r.Close()

	return writeFile(dest, r)
}

func writeFile(dest string, r io.Reader) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dest)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return f.Close()
}
