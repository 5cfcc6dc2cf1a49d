package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FSStorage keeps artifacts under a base directory on the local filesystem.
type FSStorage struct {
	baseDir string
}

// NewFSStorage creates the base directory if needed and returns the backend.
func NewFSStorage(baseDir string) (*FSStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &FSStorage{baseDir: baseDir}, nil
}

func (s *FSStorage) fullPath(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}

// Exists reports whether key is present.
func (s *FSStorage) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.fullPath(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", key, err)
}

// Save moves localPath into place under key. Rename keeps the commit atomic
// for concurrent readers; the staging file must live on the same filesystem
// as the base directory.
func (s *FSStorage) Save(_ context.Context, localPath, key string) error {
	target := s.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create parent dir for %s: %w", key, err)
	}
	if err := os.Rename(localPath, target); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", key, err)
	}
	return nil
}

// List returns all keys starting with prefix.
func (s *FSStorage) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	return keys, nil
}

// GetLocalPath returns the on-disk path for key.
func (s *FSStorage) GetLocalPath(ctx context.Context, key string) (string, error) {
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("key %s does not exist", key)
	}
	return s.fullPath(key), nil
}
