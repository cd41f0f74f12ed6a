// Package pathutil provides path manipulation utilities.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading "~" or "~/" with the home directory.
// Other paths, including "~user/...", are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
}

// IsSocketPath reports whether host names a unix socket: an absolute
// path, a home-relative path, or an abstract socket ("@name").
func IsSocketPath(host string) bool {
	return strings.HasPrefix(host, "/") || strings.HasPrefix(host, "@") ||
		host == "~" || strings.HasPrefix(host, "~/")
}
