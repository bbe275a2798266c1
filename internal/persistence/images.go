package persistence

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
)

// S3Images deletes ticket and news images stored in an S3-compatible bucket.
// Only keys under prefix are ever touched.
type S3Images struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Images builds a client for cfg.S3Bucket. A custom endpoint switches to
// path-style addressing for S3-compatible providers.
func NewS3Images(ctx context.Context, cfg config.StorageConfig) (*S3Images, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("s3: bucket name is required")
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Images{client: client, bucket: cfg.S3Bucket, prefix: cfg.S3Prefix}, nil
}

// Key returns the object key behind ref, which may be a bare key, an s3:// URI
// or an http(s) URL pointing into the bucket. Keys outside the upload prefix
// yield "".
func (s *S3Images) Key(ref string) string {
	key := S3ObjectKey(s.bucket, ref)
	if key == "" || !strings.HasPrefix(key, s.prefix) || hasDotSegment(key) {
		return ""
	}
	return key
}

// Delete removes the object behind ref.
func (s *S3Images) Delete(ctx context.Context, ref string) error {
	key := s.Key(ref)
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %q: %w", key, err)
	}
	return nil
}

// S3ObjectKey extracts the object key from an image reference.
func S3ObjectKey(bucket, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "s3://") {
		rest := strings.TrimPrefix(ref, "s3://")
		return strings.TrimPrefix(rest, bucket+"/")
	}
	if u, err := url.Parse(ref); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		path := strings.TrimPrefix(u.Path, "/")
		return strings.TrimPrefix(path, bucket+"/")
	}
	return strings.TrimPrefix(ref, "/")
}

func hasDotSegment(key string) bool {
	for _, part := range strings.Split(key, "/") {
		if part == "." || part == ".." {
			return true
		}
	}
	return false
}

// LocalImages deletes images kept in a directory on local disk.
type LocalImages struct {
	dir string
}

// NewLocalImages returns a store rooted at dir.
func NewLocalImages(dir string) *LocalImages {
	return &LocalImages{dir: dir}
}

// Key returns the file name ref resolves to inside the directory.
func (l *LocalImages) Key(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	name := filepath.Base(filepath.Clean("/" + ref))
	if name == "/" || name == "." {
		return ""
	}
	return name
}

// Delete removes the file named by ref's base name. Missing files are ignored.
func (l *LocalImages) Delete(_ context.Context, ref string) error {
	name := l.Key(ref)
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(l.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image %q: %w", name, err)
	}
	return nil
}

// ImageStore resolves image references to storage keys and removes them.
type ImageStore interface {
	Key(ref string) string
	Delete(ctx context.Context, ref string) error
}

// NewImageStore selects S3 when a bucket is configured and the local
// directory otherwise.
func NewImageStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (ImageStore, error) {
	if cfg.S3Bucket == "" {
		logger.Info("using local image directory", zap.String("dir", cfg.LocalDir))
		return NewLocalImages(cfg.LocalDir), nil
	}
	store, err := NewS3Images(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("using s3 image bucket", zap.String("bucket", cfg.S3Bucket))
	return store, nil
}
