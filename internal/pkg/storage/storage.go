// Package storage keeps blog cover images in S3-compatible object storage.
// Objects are private; readers get short-lived presigned URLs.
package storage

import (
	"context"
	"io"
	"time"
)

// Storage is the object store port.
type Storage interface {
	io.Closer

	// PutObject uploads r under key. opts.Size may be -1 when unknown.
	PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error)
	DeleteObject(ctx context.Context, bucket, key string) error
	// PresignGet returns a download URL valid for expiry.
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
	// BucketExists reports whether bucket is reachable with the configured
	// credentials.
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

// PutOptions describes the uploaded object.
type PutOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo is what the store reports after an upload.
type ObjectInfo struct {
	Bucket      string
	Key         string
	Size        int64
	ETag        string
	ContentType string
}
