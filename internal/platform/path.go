//go:build !windows

package platform

// Normalize returns the path the OS should be handed. Non-Windows paths pass through.
func Normalize(path string) string {
	return path
}
