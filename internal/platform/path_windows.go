//go:build windows

package platform

import (
	"path/filepath"
	"strings"
)

const longPathPrefix = `\\?\`

// Normalize makes absolute drive-letter paths safe for work dirs nested deeper
// than MAX_PATH by adding the extended-length prefix.
func Normalize(path string) string {
	if len(path) < 2 || path[1] != ':' {
		return path
	}
	if !filepath.IsAbs(path) || strings.HasPrefix(path, longPathPrefix) {
		return path
	}
	return longPathPrefix + filepath.Clean(path)
}
