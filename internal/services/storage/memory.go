package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/autovolt/lakehouse/pkg/utils"
)

// Memory is a process-local BlobStore. It backs local runs and tests.
type Memory struct {
	bucket  string
	objects map[string][]byte
	mu      sync.RWMutex
}

// NewMemory creates an empty in-memory store for bucket
func NewMemory(bucket string) *Memory {
	return &Memory{
		bucket:  bucket,
		objects: make(map[string][]byte),
	}
}

// Write stores a copy of data at path
func (m *Memory) Write(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !utils.ValidateObjectKey(path) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, path)
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.objects[path] = buf
	m.mu.Unlock()

	return URI(m.bucket, path), nil
}

// Exists reports whether path holds an object
func (m *Memory) Exists(ctx context.Context, path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[path]
	return ok, nil
}

// Read returns a copy of the object at path
func (m *Memory) Read(ctx context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

// List returns the stored paths under prefix, sorted
func (m *Memory) List(prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var paths []string
	for p := range m.objects {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}
