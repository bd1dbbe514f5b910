package guestcache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// #region kv-interface

// KV is a scoped device-local key/value store. The cache depends only
// on this interface, not on any specific storage mechanism.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

// #endregion kv-interface

// #region memory-kv

// MemoryKV is an in-process KV, used in tests and as a demo backend.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryKV returns an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// #endregion memory-kv

// #region file-kv

// FileKV stores each key as a file under a directory.
type FileKV struct {
	dir string
}

// NewFileKV ensures the directory exists and returns a store over it.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create kv dir: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileKV) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read key %s: %w", key, err)
	}
	return data, true, nil
}

func (f *FileKV) Set(key string, value []byte) error {
	if err := os.WriteFile(f.path(key), value, 0o644); err != nil {
		return fmt.Errorf("write key %s: %w", key, err)
	}
	return nil
}

func (f *FileKV) Remove(key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove key %s: %w", key, err)
	}
	return nil
}

// #endregion file-kv
