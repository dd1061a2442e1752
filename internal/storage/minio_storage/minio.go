package minio_storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/storage/blob"
)

type MinioStorage struct {
	client       *minio.Client
	bucket       string
	presignedTTL time.Duration
}

func NewMinioStorage(endpoint, accessKey, secretKey string, useSSL bool, bucket string, presignedTTL time.Duration) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("error checking bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("error creating bucket %s: %w", bucket, err)
		}
	}

	return &MinioStorage{client: client, bucket: bucket, presignedTTL: presignedTTL}, nil
}

func (s *MinioStorage) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		objectKey,
		reader,
		size,
		minio.PutObjectOptions{ContentType: blob.ContentType(objectKey, contentType)},
	)
	if err != nil {
		return fmt.Errorf("minio.Upload %s: %w", objectKey, err)
	}
	return nil
}

func (s *MinioStorage) Open(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	if err := s.stat(ctx, objectKey); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio.Open %s: %w", objectKey, err)
	}
	return obj, nil
}

// DownloadURL checks that the object exists first: presigning alone succeeds
// for any key.
func (s *MinioStorage) DownloadURL(ctx context.Context, objectKey string) (string, error) {
	if err := s.stat(ctx, objectKey); err != nil {
		return "", err
	}
	reqParams := make(url.Values)
	presignedURL, err := s.client.PresignedGetObject(
		ctx,
		s.bucket,
		objectKey,
		s.presignedTTL,
		reqParams,
	)
	if err != nil {
		return "", fmt.Errorf("minio.DownloadURL %s: %w", objectKey, err)
	}
	return presignedURL.String(), nil
}

func (s *MinioStorage) Delete(ctx context.Context, objectKey string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}

func (s *MinioStorage) stat(ctx context.Context, objectKey string) error {
	_, err := s.client.StatObject(ctx, s.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
			return app_errors.ErrObjectNotFound
		}
		return fmt.Errorf("minio.stat %s: %w", objectKey, err)
	}
	return nil
}
