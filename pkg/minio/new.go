// Package minio wraps the MinIO SDK as a small read-only object store
// client. The service uses it to fetch configuration from S3-compatible
// buckets.
package minio

import (
	"context"
	"errors"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// IMinIO is the object store surface the service depends on.
type IMinIO interface {
	// FetchObject downloads an object and returns its contents.
	FetchObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Config holds the connection settings for an S3-compatible endpoint.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

var errEndpointRequired = errors.New("object store endpoint is required")

// New creates a client for the given endpoint. It does not dial; the
// first FetchObject call does.
func New(cfg Config) (IMinIO, error) {
	if cfg.Endpoint == "" {
		return nil, errEndpointRequired
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	return &minioImpl{client: client}, nil
}
