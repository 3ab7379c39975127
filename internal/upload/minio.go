package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds the connection settings of an S3-compatible bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Validate reports missing settings.
func (c MinioConfig) Validate() error {
	var missing []string
	if c.Endpoint == "" {
		missing = append(missing, "minio-endpoint")
	}
	if c.AccessKey == "" {
		missing = append(missing, "minio-access-key")
	}
	if c.SecretKey == "" {
		missing = append(missing, "minio-secret-key")
	}
	if c.Bucket == "" {
		missing = append(missing, "minio-bucket")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing minio settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// MinioStore puts objects into a bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
	region string
}

// NewMinioStore connects to the endpoint. It does not contact the server.
func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, region: cfg.Region}, nil
}

// EnsureBucket creates the bucket when it does not exist.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Save uploads r as object name and returns its URL. The bucket must exist;
// call EnsureBucket once before the first Save.
func (s *MinioStore) Save(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	// An object with this name means the random prefix collided.
	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err == nil {
		return "", fmt.Errorf("object %s already exists", name)
	} else if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return "", fmt.Errorf("failed to check for existing object: %w", err)
	}

	if size <= 0 {
		size = -1
	}
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType(name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store object: %w", err)
	}
	return s.ObjectURL(name), nil
}

// ObjectURL returns the path-style URL of object name.
func (s *MinioStore) ObjectURL(name string) string {
	u := s.client.EndpointURL()
	return strings.TrimRight(u.String(), "/") + "/" + s.bucket + "/" + name
}

var _ Store = (*MinioStore)(nil)
var _ Store = (*DiskStore)(nil)

var errNoStore = errors.New("no upload store configured")
