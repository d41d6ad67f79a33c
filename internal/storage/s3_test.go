package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	putKey      string
	putSize     int64
	putType     string
	presignKey  string
	presignTTL  time.Duration
	removedKeys []string
	err         error
}

func (f *fakeClient) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	f.putKey = key
	f.putSize = size
	f.putType = opts.ContentType
	return minio.UploadInfo{Key: key, Size: size}, nil
}

func (f *fakeClient) PresignedGetObject(ctx context.Context, bucket, key string, expires time.Duration, reqParams url.Values) (*url.URL, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.presignKey = key
	f.presignTTL = expires
	return url.Parse("https://store.example.com/" + bucket + "/" + key + "?signed=1")
}

func (f *fakeClient) RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error {
	if f.err != nil {
		return f.err
	}
	f.removedKeys = append(f.removedKeys, key)
	return nil
}

func testStore(fake *fakeClient, ttl time.Duration) *S3Storage {
	return NewWithClient(fake, "cypher", ttl, zerolog.Nop())
}

func TestUploadSetsContentType(t *testing.T) {
	fake := &fakeClient{}
	s := testStore(fake, time.Hour)

	err := s.Upload(context.Background(), "track-abc-song.mp3", bytes.NewReader([]byte("audio")), 5, "audio/mpeg")
	require.NoError(t, err)
	assert.Equal(t, "track-abc-song.mp3", fake.putKey)
	assert.EqualValues(t, 5, fake.putSize)
	assert.Equal(t, "audio/mpeg", fake.putType)
}

func TestUploadDefaultsContentType(t *testing.T) {
	fake := &fakeClient{}
	s := testStore(fake, time.Hour)

	err := s.Upload(context.Background(), "cover-abc.png", bytes.NewReader(nil), 0, "")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", fake.putType)
}

func TestSignedURLUsesDefaultTTL(t *testing.T) {
	fake := &fakeClient{}
	s := testStore(fake, 30*time.Minute)

	u, err := s.SignedURL(context.Background(), "track-abc-song.mp3", 0)
	require.NoError(t, err)
	assert.Contains(t, u, "track-abc-song.mp3")
	assert.Equal(t, 30*time.Minute, fake.presignTTL)
}

func TestSignedURLExplicitTTL(t *testing.T) {
	fake := &fakeClient{}
	s := testStore(fake, 30*time.Minute)

	_, err := s.SignedURL(context.Background(), "k", 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, fake.presignTTL)
}

func TestStorageErrorsWrapSentinel(t *testing.T) {
	fake := &fakeClient{err: errors.New("connection refused")}
	s := testStore(fake, time.Hour)

	err := s.Upload(context.Background(), "k", bytes.NewReader(nil), 0, "")
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	_, err = s.SignedURL(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	err = s.Delete(context.Background(), "k")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestDelete(t *testing.T) {
	fake := &fakeClient{}
	s := testStore(fake, time.Hour)

	require.NoError(t, s.Delete(context.Background(), "track-old"))
	assert.Equal(t, []string{"track-old"}, fake.removedKeys)
}
