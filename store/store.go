// Package store reads raster bytes behind image URIs.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	ErrNotFound         = errors.New("image not found")
	ErrPermissionDenied = errors.New("permission denied")
)

const fileScheme = "file://"

// FileStore reads local files. Relative paths resolve against Root.
type FileStore struct {
	Root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{Root: root}
}

func (s *FileStore) ReadBytes(ctx context.Context, uri string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.resolve(uri)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	case errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, uri)
	}
	return nil, fmt.Errorf("error reading %s: %w", uri, err)
}

func (s *FileStore) resolve(uri string) string {
	path := strings.TrimPrefix(uri, fileScheme)
	if s.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(s.Root, path)
	}
	return filepath.Clean(path)
}

// MemoryStore serves images from memory. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

func (s *MemoryStore) Put(uri string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[uri] = data
}

func (s *MemoryStore) ReadBytes(ctx context.Context, uri string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	return data, nil
}
