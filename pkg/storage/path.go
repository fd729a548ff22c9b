package storage

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// SafeJoin resolves rel against root and guarantees the result stays inside root.
// Absolute paths and any ".." that climbs above root are rejected with ErrPathEscape.
// root must already be absolute and clean.
func SafeJoin(root, rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("%w: empty path", ErrPathEscape)
	}
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, `\`) {
		return "", fmt.Errorf("%w: %q is absolute", ErrPathEscape, rel)
	}

	resolved := filepath.Join(root, filepath.FromSlash(rel))
	within, err := filepath.Rel(root, resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, rel)
	}
	if within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, rel)
	}

	return resolved, nil
}

// CleanKey normalizes an object key with the same rules as SafeJoin,
// for backends that have no filesystem root.
func CleanKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrPathEscape)
	}
	key = strings.ReplaceAll(key, `\`, "/")
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q is absolute", ErrPathEscape, key)
	}

	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, key)
	}

	return cleaned, nil
}
