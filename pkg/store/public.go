package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotRegularFile is returned when a public name resolves to a directory or device
var ErrNotRegularFile = errors.New("not a regular file")

// PublicDir serves static content from a directory on disk
type PublicDir struct {
	Root string
}

// NewPublicDir creates a PublicDir rooted at root
func NewPublicDir(root string) *PublicDir {
	return &PublicDir{Root: root}
}

// LoadFile returns the content of the named file. A missing or unreadable
// file, or a name that would leave Root, reports false.
func (d *PublicDir) LoadFile(name string) (string, bool) {
	content, err := d.Read(name)
	if err != nil {
		return "", false
	}
	return content, true
}

// Read returns the content of the named file inside Root
func (d *PublicDir) Read(name string) (string, error) {
	if name == "" || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid public file name %q", name)
	}

	fullPath := filepath.Join(d.Root, name)
	info, err := os.Stat(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to access file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotRegularFile, fullPath)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return decodeText(data), nil
}
