package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/autovolt/lakehouse/internal/config"
	"github.com/autovolt/lakehouse/pkg/utils"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	// ErrNotFound is returned when reading a path that holds no object
	ErrNotFound = errors.New("object not found")
	// ErrInvalidKey is returned when writing to an unsafe object key
	ErrInvalidKey = errors.New("invalid object key")
)

// BlobStore is the object store holding the lake and the state document
type BlobStore interface {
	Write(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Exists(ctx context.Context, path string) (bool, error)
	Read(ctx context.Context, path string) ([]byte, error)
}

// URIScheme prefixes every object URI handed out by the stores
const URIScheme = "s3://"

// URI returns the canonical URI of path in bucket
func URI(bucket, path string) string {
	return URIScheme + bucket + "/" + strings.TrimPrefix(path, "/")
}

// ParseURI splits an object URI into bucket and path
func ParseURI(uri string) (string, string, error) {
	rest, ok := strings.CutPrefix(uri, URIScheme)
	if !ok {
		return "", "", fmt.Errorf("unsupported object uri %q", uri)
	}
	bucket, path, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || path == "" {
		return "", "", fmt.Errorf("malformed object uri %q", uri)
	}
	return bucket, path, nil
}

// Service stores objects in a MinIO / S3 bucket
type Service struct {
	client *minio.Client
	bucket string
}

// NewService connects to the configured endpoint and makes sure the bucket exists
func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
	}

	return &Service{client: client, bucket: cfg.MinioBucket}, nil
}

// Write uploads data at path and returns the object URI
func (s *Service) Write(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if !utils.ValidateObjectKey(path) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, path)
	}
	_, err := s.client.PutObject(ctx, s.bucket, path, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return URI(s.bucket, path), nil
}

// Exists reports whether an object is stored at path
func (s *Service) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", path, err)
}

// Read downloads the object stored at path
func (s *Service) Read(ctx context.Context, path string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", path, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read object %s: %w", path, err)
	}
	return data, nil
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
