package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tracer-e2e/batchcheck/internal/platform"
)

// LocalBucket treats a directory as a bucket: keys are slash-separated paths
// relative to the root. Used for offline harness runs and the demo pipeline.
type LocalBucket struct {
	root string
}

var _ Bucket = (*LocalBucket)(nil)

// NewLocalBucket binds a bucket to root. The directory is not required to exist
// yet; List reports its absence.
func NewLocalBucket(root string) (*LocalBucket, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve bucket root %s: %w", root, err)
	}
	return &LocalBucket{root: abs}, nil
}

// Name returns the file:// URL of the root.
func (b *LocalBucket) Name() string {
	return "file://" + filepath.ToSlash(b.root)
}

// List walks the root and returns regular files whose key starts with prefix.
func (b *LocalBucket) List(_ context.Context, prefix string) ([]Object, error) {
	root := platform.Normalize(b.root)
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("list %s: %w", b.Name(), ErrNotFound)
		}
		return nil, fmt.Errorf("list %s: %w", b.Name(), err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("list %s: bucket root is not a directory", b.Name())
	}

	var objects []Object
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, Object{Key: key, Size: fi.Size(), LastModified: fi.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s/%s: %w", b.Name(), prefix, err)
	}

	// WalkDir orders per directory; keys must sort as whole strings.
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Open opens the file behind key.
func (b *LocalBucket) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := b.resolve(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(platform.Normalize(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("get %s/%s: %w", b.Name(), key, ErrNotFound)
		}
		return nil, fmt.Errorf("get %s/%s: %w", b.Name(), key, err)
	}
	return f, nil
}

// Close is a no-op.
func (b *LocalBucket) Close() error {
	return nil
}

func (b *LocalBucket) resolve(key string) (string, error) {
	if key == "" || !fs.ValidPath(key) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(b.root, filepath.FromSlash(key)), nil
}
