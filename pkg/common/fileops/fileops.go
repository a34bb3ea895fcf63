// Package fileops collects small filesystem helpers shared across the
// manager packages: strict reads that treat a missing file as an error
// worth wrapping, and writes that ensure parent directories exist first.
package fileops

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/scmkit/sourcecontrol/pkg/repository/scpath"
)

// ReadStringStrict reads the file at path, returning a wrapped error if it
// is missing or unreadable rather than a bare os.PathError.
func ReadStringStrict(path scpath.AbsolutePath) (string, error) {
	data, err := os.ReadFile(path.String())
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// WriteConfigString writes content to path, creating parent directories as
// needed, the way ref and config files are written throughout the store.
func WriteConfigString(path scpath.AbsolutePath, content string) error {
	if err := os.MkdirAll(filepath.Dir(path.String()), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path.String(), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path names an existing file or directory.
func Exists(path scpath.AbsolutePath) bool {
	_, err := os.Stat(path.String())
	return err == nil
}
