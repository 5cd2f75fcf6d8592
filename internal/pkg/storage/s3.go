package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/samber/lo"
)

// fallbackRegion signs requests to custom endpoints that ignore the region.
const fallbackRegion = "us-east-1"

// S3 stores objects in AWS S3 or an S3 compatible service.
type S3 struct {
	client  *s3.Client
	presign *s3.PresignClient
}

// NewS3 uses static credentials when AccessKey is set and the default AWS
// credential chain otherwise.
func NewS3(ctx context.Context, opts Options) (*S3, error) {
	loaders := []func(*config.LoadOptions) error{}

	region := opts.Region
	if region == "" && opts.Endpoint != "" {
		region = fallbackRegion
	}
	if region != "" {
		loaders = append(loaders, config.WithRegion(region))
	}
	if opts.AccessKey != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, opts.SessionToken)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = opts.PathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return &S3{client: client, presign: s3.NewPresignClient(client)}, nil
}

func (s *S3) PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	out, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          r,
		Metadata:      opts.Metadata,
		ContentType:   lo.EmptyableToPtr(opts.ContentType),
		ContentLength: lo.Ternary(opts.Size > 0, aws.Int64(opts.Size), nil),
	})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("storage: s3 put %s/%s: %w", bucket, key, err)
	}

	return ObjectInfo{
		Bucket:      bucket,
		Key:         key,
		Size:        opts.Size,
		ETag:        aws.ToString(out.ETag),
		ContentType: opts.ContentType,
	}, nil
}

func (s *S3) DeleteObject(ctx context.Context, bucket, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("storage: s3 delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *S3) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("storage: s3 presign %s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}

func (s *S3) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return true, nil
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, fmt.Errorf("storage: s3 head bucket %s: %w", bucket, err)
}

// Close is a no-op; the SDK client holds no long-lived connections of its own.
func (s *S3) Close() error { return nil }
