package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/tracer-e2e/batchcheck/pkg/config"
)

// GCSBucket reads from a Google Cloud Storage bucket using application default
// credentials.
type GCSBucket struct {
	client *storage.Client
	bucket string
}

var _ Bucket = (*GCSBucket)(nil)

// NewGCSBucket creates a storage client bound to cfg.Bucket. A non-empty
// Endpoint targets an emulator without authentication.
func NewGCSBucket(ctx context.Context, cfg config.StorageConfig) (*GCSBucket, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("new storage client: %w", err)
	}

	return &GCSBucket{client: client, bucket: cfg.Bucket}, nil
}

// Name returns the gs:// URL of the bucket.
func (b *GCSBucket) Name() string {
	return "gs://" + b.bucket
}

// List iterates all objects under prefix.
func (b *GCSBucket) List(ctx context.Context, prefix string) ([]Object, error) {
	it := b.client.Bucket(b.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var objects []Object
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", b.Name(), prefix, classifyGCSError(err))
		}
		objects = append(objects, Object{
			Key:          attrs.Name,
			Size:         attrs.Size,
			LastModified: attrs.Updated,
		})
	}

	return objects, nil
}

// Open returns a reader over the whole object.
func (b *GCSBucket) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := b.client.Bucket(b.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", b.Name(), key, classifyGCSError(err))
	}
	return r, nil
}

// Close releases the storage client.
func (b *GCSBucket) Close() error {
	return b.client.Close()
}

func classifyGCSError(err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
