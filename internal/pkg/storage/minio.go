package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIO stores objects in a MinIO deployment.
type MinIO struct {
	client *minio.Client
}

func NewMinIO(opts Options) (*MinIO, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, opts.SessionToken),
		Secure: opts.Secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: minio client: %w", err)
	}
	return &MinIO{client: client}, nil
}

func (m *MinIO) PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	size := opts.Size
	if size <= 0 {
		size = -1 // multipart upload with unknown length
	}

	info, err := m.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.Metadata,
	})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("storage: minio put %s/%s: %w", bucket, key, err)
	}

	return ObjectInfo{
		Bucket:      info.Bucket,
		Key:         info.Key,
		Size:        info.Size,
		ETag:        info.ETag,
		ContentType: opts.ContentType,
	}, nil
}

func (m *MinIO) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := m.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: minio delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (m *MinIO) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("storage: minio presign %s/%s: %w", bucket, key, err)
	}
	return u.String(), nil
}

func (m *MinIO) BucketExists(ctx context.Context, bucket string) (bool, error) {
	ok, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return false, fmt.Errorf("storage: minio bucket exists %s: %w", bucket, err)
	}
	return ok, nil
}

func (m *MinIO) Close() error { return nil }
