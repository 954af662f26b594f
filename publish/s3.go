package publish

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mwhited/robocatalog/config"
)

const awsEndpoint = "s3.amazonaws.com"

// S3Target implements the Target interface for S3-compatible object
// storage.
type S3Target struct {
	client   *minio.Client
	endpoint string
	bucket   string
	useSSL   bool
}

// NewS3Target creates an S3 target from the publisher configuration.
func NewS3Target(cfg config.PublishConfig) (*S3Target, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}

	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: failed to create client for %s: %w", cfg.S3Endpoint, err)
	}

	return &S3Target{
		client:   client,
		endpoint: cfg.S3Endpoint,
		bucket:   cfg.S3Bucket,
		useSSL:   cfg.S3UseSSL,
	}, nil
}

// Name returns the name of this target
func (t *S3Target) Name() string {
	return "s3"
}

// Store uploads one object and returns its public URL.
func (t *S3Target) Store(ctx context.Context, key, contentType string, reader io.Reader, size int64) (string, error) {
	_, err := t.client.PutObject(ctx, t.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("s3: failed to upload %s: %w", key, err)
	}
	return t.publicURL(key), nil
}

// publicURL builds the object's public address: virtual-host style on
// AWS, path style everywhere else.
func (t *S3Target) publicURL(key string) string {
	scheme := "https"
	if !t.useSSL {
		scheme = "http"
	}
	if t.endpoint == awsEndpoint {
		return fmt.Sprintf("%s://%s.%s/%s", scheme, t.bucket, awsEndpoint, key)
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, t.endpoint, t.bucket, key)
}

// Close releases any held connections
func (t *S3Target) Close() error {
	return nil
}
