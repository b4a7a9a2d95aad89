// Package objstore lists and reads objects from the bucket that receives
// pipeline metrics records. S3, GCS and a local directory are supported.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tracer-e2e/batchcheck/pkg/config"
)

// ErrNotFound is wrapped when a bucket or key does not exist.
var ErrNotFound = errors.New("object not found")

// Object describes a listed key.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Bucket is the read-only surface the checks need from object storage.
type Bucket interface {
	// Name identifies the bucket in logs, e.g. "s3://tracer-nxf-outputs".
	Name() string
	// List returns every object whose key starts with prefix, in key order.
	List(ctx context.Context, prefix string) ([]Object, error)
	// Open returns the raw object body. Callers must close it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Close() error
}

// New opens the bucket backend selected by cfg.
func New(ctx context.Context, cfg config.StorageConfig) (Bucket, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case config.BackendS3:
		return NewS3Bucket(ctx, cfg)
	case config.BackendGCS:
		return NewGCSBucket(ctx, cfg)
	case config.BackendFile:
		return NewLocalBucket(cfg.Root)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

// ReadObject fetches key and returns its decoded body. Keys ending in .gz, .zst
// or .xz are decompressed.
func ReadObject(ctx context.Context, b Bucket, key string) ([]byte, error) {
	raw, err := b.Open(ctx, key)
	if err != nil {
		return nil, err
	}

	body, err := NewDecoder(key, raw)
	if err != nil {
		raw.Close()
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}
