package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgMinio "conversion-guard/pkg/minio"
)

const remoteFetchTimeout = 10 * time.Second

// fetchRemote downloads a config file from an S3-compatible bucket. The
// path format is s3://bucket/key; endpoint and credentials come from the
// bootstrap env block.
func fetchRemote(ctx context.Context, bootstrap Bootstrap) ([]byte, error) {
	bucket, key, err := splitS3Path(bootstrap.ConfigPath)
	if err != nil {
		return nil, err
	}
	if bootstrap.S3Endpoint == "" {
		return nil, fmt.Errorf("S3_ENDPOINT is required for remote config paths")
	}

	store, err := pkgMinio.New(pkgMinio.Config{
		Endpoint:  bootstrap.S3Endpoint,
		AccessKey: bootstrap.S3AccessKey,
		SecretKey: bootstrap.S3SecretKey,
		UseSSL:    bootstrap.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, remoteFetchTimeout)
	defer cancel()

	return store.FetchObject(fetchCtx, bucket, key)
}

func splitS3Path(path string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(path, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid s3 path %q, want s3://bucket/key", path)
	}
	return parts[0], parts[1], nil
}
