package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

// LocalStore writes objects to a directory on local disk.
type LocalStore struct {
	dir       string
	publicURL string
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(dir, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir, publicURL: publicURL}, nil
}

// Save writes the object and returns its public path.
func (s *LocalStore) Save(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	// name is generated by the caller; reject anything path-like anyway.
	if filepath.Base(name) != name {
		return "", fmt.Errorf("invalid object name %q", name)
	}

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, body); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return path.Join(s.publicURL, name), nil
}

// Remove deletes a stored object. Removing a missing object is not an
// error.
func (s *LocalStore) Remove(ctx context.Context, name string) error {
	if filepath.Base(name) != name {
		return fmt.Errorf("invalid object name %q", name)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// Dir returns the directory objects are written to, for the static
// file route.
func (s *LocalStore) Dir() string {
	return s.dir
}
