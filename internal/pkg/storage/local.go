package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes exports under a directory, for development and
// deployments without a bucket.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	if root == "" {
		root = "./exports"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir %s: %w", root, err)
	}
	return &LocalStorage{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// resolve maps key below root and rejects keys that climb out of it.
func (s *LocalStorage) resolve(key string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(key))
	if rel, err := filepath.Rel(s.root, full); err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid export key %q", key)
	}
	return full, nil
}

// Put writes through a temp file so readers never see a partial export.
func (s *LocalStorage) Put(_ context.Context, key string, reader io.Reader, _ string) error {
	dst, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".export-*")
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	_, copyErr := io.Copy(tmp, reader)
	closeErr := tmp.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write export %s: %w", key, copyErr)
	}
	return os.Rename(tmp.Name(), dst)
}

func (s *LocalStorage) GetURL(key string) string {
	if s.baseURL == "" {
		return "file://" + filepath.ToSlash(filepath.Join(s.root, key))
	}
	return s.baseURL + "/" + key
}
