package objstore

import (
	"context"
	"fmt"
	"io"

	"github.com/tracer-e2e/batchcheck/pkg/config"
)

// unavailableBucket stands in for a bucket whose client could not be built.
// Every read fails with the construction error.
type unavailableBucket struct {
	name string
	err  error
}

// Unavailable returns a Bucket whose List and Open fail with err.
func Unavailable(name string, err error) Bucket {
	return &unavailableBucket{name: name, err: err}
}

func (b *unavailableBucket) Name() string {
	return b.name
}

func (b *unavailableBucket) List(_ context.Context, prefix string) ([]Object, error) {
	return nil, fmt.Errorf("list %s/%s: %w", b.name, prefix, b.err)
}

func (b *unavailableBucket) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("get %s/%s: %w", b.name, key, b.err)
}

func (b *unavailableBucket) Close() error {
	return nil
}

// DisplayName renders the bucket address selected by cfg without opening it.
func DisplayName(cfg config.StorageConfig) string {
	if cfg.Backend == config.BackendFile {
		return "file://" + cfg.Root
	}
	return cfg.Backend + "://" + cfg.Bucket
}
