// Package storage wraps the S3-compatible object store behind a small
// gateway. Handlers never touch minio directly; they upload bytes, mint
// signed download URLs and delete objects through S3Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// ErrStorageUnavailable wraps any object store failure so handlers can
// map the whole class to one HTTP status without inspecting minio errors.
var ErrStorageUnavailable = errors.New("object storage unavailable")

// ClientAPI is the subset of *minio.Client the gateway uses. Tests swap
// in a fake implementation.
type ClientAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// S3Storage issues uploads, signed GET URLs and deletes against a single
// bucket.
type S3Storage struct {
	client     ClientAPI
	bucket     string
	defaultTTL time.Duration
	log        zerolog.Logger
}

const defaultContentType = "application/octet-stream"

// New dials the object store and returns a gateway bound to one bucket.
// signedTTL is the default expiry for signed URLs.
func New(endpoint, accessKey, secretKey, bucket string, useSSL bool, signedTTL time.Duration, log zerolog.Logger) (*S3Storage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return NewWithClient(client, bucket, signedTTL, log), nil
}

// NewWithClient builds a gateway around an existing client. Used by tests.
func NewWithClient(client ClientAPI, bucket string, signedTTL time.Duration, log zerolog.Logger) *S3Storage {
	if signedTTL <= 0 {
		signedTTL = time.Hour
	}
	return &S3Storage{client: client, bucket: bucket, defaultTTL: signedTTL, log: log}
}

// Upload streams an object into the bucket under the given key. The
// contentType falls back to application/octet-stream when empty.
func (s *S3Storage) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = defaultContentType
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("object upload failed")
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// SignedURL mints a time-limited GET URL for an existing object. A
// non-positive ttl uses the gateway default.
func (s *S3Storage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("presign failed")
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return u.String(), nil
}

// Delete removes an object. Missing objects are not an error to minio,
// which suits the best-effort cleanup paths that call this.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("object delete failed")
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
