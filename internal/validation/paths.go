package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxPathLength bounds configured file paths.
const MaxPathLength = 4096

// FilePath expands a leading ~/ and returns the cleaned absolute form of
// path. Empty input stays empty so optional settings can be left unset.
func FilePath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(path) > MaxPathLength {
		return "", fmt.Errorf("path too long (max %d characters)", MaxPathLength)
	}
	for _, r := range path {
		if r == 0 {
			return "", fmt.Errorf("path contains null bytes")
		}
		if r < 32 && r != '\t' {
			return "", fmt.Errorf("path contains control characters")
		}
	}

	switch {
	case path == "~" || strings.HasPrefix(path, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	case strings.HasPrefix(path, "~"):
		return "", fmt.Errorf("unsupported tilde form in %q", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot make path absolute: %w", err)
	}
	return abs, nil
}
