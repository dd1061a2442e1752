package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/storage/blob"
)

// BucketStorage is the blob driver for Firebase Storage, which is a Cloud
// Storage bucket. The bucket handle comes from the Firebase app.
type BucketStorage struct {
	bucket    *storage.BucketHandle
	signedTTL time.Duration
}

func NewBucketStorage(bucket *storage.BucketHandle, signedTTL time.Duration) *BucketStorage {
	return &BucketStorage{bucket: bucket, signedTTL: signedTTL}
}

func (s *BucketStorage) Upload(ctx context.Context, path string, r io.Reader, _ int64, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = blob.ContentType(path, contentType)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (s *BucketStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	r, err := s.bucket.Object(path).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, app_errors.ErrObjectNotFound
		}
		return nil, fmt.Errorf("gcs.Open %s: %w", path, err)
	}
	return r, nil
}

func (s *BucketStorage) DownloadURL(ctx context.Context, path string) (string, error) {
	if _, err := s.bucket.Object(path).Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", app_errors.ErrObjectNotFound
		}
		return "", fmt.Errorf("gcs.DownloadURL %s: %w", path, err)
	}
	u, err := s.bucket.SignedURL(path, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(s.signedTTL),
	})
	if err != nil {
		return "", fmt.Errorf("gcs.DownloadURL %s: %w", path, err)
	}
	return u, nil
}
