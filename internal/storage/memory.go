package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemoryStore keeps blobs in process memory. It backs the "memory" driver
// used for local development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Upload(ctx context.Context, objectName string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.objects[objectName] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Download(ctx context.Context, objectName string) (io.ReadCloser, int64, error) {
	m.mu.RLock()
	data, ok := m.objects[objectName]
	m.mu.RUnlock()
	if !ok {
		return nil, 0, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (m *MemoryStore) Delete(ctx context.Context, objectName string) error {
	m.mu.Lock()
	delete(m.objects, objectName)
	m.mu.Unlock()
	return nil
}

// Exists reports whether objectName is currently stored.
func (m *MemoryStore) Exists(objectName string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[objectName]
	return ok
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
