package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	DriverS3    = "s3"
	DriverMinIO = "minio"
)

// ErrUnknownDriver is returned by New for an unsupported driver name.
var ErrUnknownDriver = errors.New("storage: unknown driver")

// Options configures either driver.
type Options struct {
	// Endpoint is host[:port] for MinIO, or a URL for an S3 compatible
	// endpoint. Empty means AWS S3 itself.
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	SessionToken string
	// Secure enables TLS towards MinIO.
	Secure bool
	// PathStyle addresses buckets as endpoint/bucket instead of bucket.endpoint.
	PathStyle bool
}

// New builds the Storage for driver ("s3" or "minio", case-insensitive).
func New(ctx context.Context, driver string, opts Options) (Storage, error) {
	switch d := strings.ToLower(strings.TrimSpace(driver)); d {
	case DriverS3:
		return NewS3(ctx, opts)
	case DriverMinIO:
		return NewMinIO(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, d)
	}
}
