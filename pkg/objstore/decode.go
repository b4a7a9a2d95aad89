package objstore

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Encoding returns the compression implied by a key suffix, or "" for plain objects.
func Encoding(key string) string {
	switch {
	case strings.HasSuffix(key, ".gz"):
		return "gzip"
	case strings.HasSuffix(key, ".zst"):
		return "zstd"
	case strings.HasSuffix(key, ".xz"):
		return "xz"
	default:
		return ""
	}
}

// NewDecoder wraps r so reads return the decompressed body for key. Closing the
// result closes r.
func NewDecoder(key string, r io.ReadCloser) (io.ReadCloser, error) {
	switch Encoding(key) {
	case "gzip":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("init gzip reader for %s: %w", key, err)
		}
		return &stackedReader{Reader: zr, closers: []io.Closer{zr, r}}, nil
	case "zstd":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("init zstd reader for %s: %w", key, err)
		}
		return &stackedReader{Reader: zr, closers: []io.Closer{zr.IOReadCloser(), r}}, nil
	case "xz":
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("init xz reader for %s: %w", key, err)
		}
		return &stackedReader{Reader: xr, closers: []io.Closer{r}}, nil
	default:
		return r, nil
	}
}

// stackedReader reads from the outermost decoder and closes every layer.
type stackedReader struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedReader) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
