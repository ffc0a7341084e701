package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Persister stores the serialized project. Load returns nil data when nothing was saved yet.
type Persister interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// MemoryPersister keeps the blob in memory.
type MemoryPersister struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

func NewMemoryPersister(initial []byte) *MemoryPersister {
	return &MemoryPersister{data: append([]byte(nil), initial...)}
}

func (m *MemoryPersister) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.data) == 0 {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryPersister) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FilePersister writes the blob to a file, replacing it atomically.
type FilePersister struct {
	Path string
}

func NewFilePersister(path string) *FilePersister {
	return &FilePersister{Path: path}
}

func (f *FilePersister) Load() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	return data, nil
}

func (f *FilePersister) Save(data []byte) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace %s: %w", f.Path, err)
	}
	return nil
}

// ShouldStartFresh reports whether the previous session ended less than grace before now.
func ShouldStartFresh(lastUnload, now time.Time, grace time.Duration) bool {
	if lastUnload.IsZero() || grace <= 0 {
		return false
	}
	elapsed := now.Sub(lastUnload)
	return elapsed >= 0 && elapsed < grace
}
