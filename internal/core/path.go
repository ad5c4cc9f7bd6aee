package core

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// CanonicalPath normalizes a user-supplied folder path into the registry
// key: absolute (relative paths resolve against the current working
// directory), cleaned, and case-folded on case-insensitive platforms. The
// same physical folder always maps to the same key no matter how it was
// referenced.
func CanonicalPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrPathNotFound)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	abs = filepath.Clean(abs)
	if runtime.GOOS == "windows" {
		abs = strings.ToLower(abs)
	}

	return abs, nil
}
