package xfs

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces a leading tilde (~) with the user's home directory.
func ExpandTilde(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}

	return path
}

// IsLocalPath reports whether the locator refers to the local filesystem
// rather than a remote URL.
func IsLocalPath(locator string) bool {
	if strings.HasPrefix(locator, "file://") {
		return true
	}
	return !strings.Contains(locator, "://")
}
