package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes objects under a directory served at /uploads
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir, baseURL: "/uploads"}
}

func (s *LocalStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", errors.New("storage: invalid object key")
	}
	filePath := filepath.Join(s.dir, filepath.FromSlash(clean))

	// Create destination directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", err
	}

	dst, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", err
	}
	return s.baseURL + clean, nil
}
