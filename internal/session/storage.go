package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Names of the two durable entries making up a persisted credential.
const (
	TokenKey = "smart_review_token"
	UserKey  = "smart_review_user"
)

// ErrNotFound is returned by a Storage when the entry does not exist.
var ErrNotFound = errors.New("storage entry not found")

// Storage is durable key/value storage for the credential entries.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	// Remove deletes the entry. Removing a missing entry is not an error.
	Remove(key string) error
}

// FileStorage keeps each entry in its own file under Dir.
type FileStorage struct {
	Dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStorage{Dir: dir}, nil
}

func (fs *FileStorage) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(fs.Dir, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Set writes to a temporary file and renames it over the entry, so a reader
// never sees a partially written value.
func (fs *FileStorage) Set(key string, value []byte) error {
	tmp, err := os.CreateTemp(fs.Dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", key, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on %s: %w", key, err)
	}
	if err := os.Rename(tmpName, filepath.Join(fs.Dir, key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

func (fs *FileStorage) Remove(key string) error {
	err := os.Remove(filepath.Join(fs.Dir, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// MemoryStorage is a Storage that lives only as long as the value. Copies of
// it share nothing, so a "restart" in tests is modelled by reusing the same
// instance with a fresh Store.
type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string][]byte)}
}

func (ms *MemoryStorage) Get(key string) ([]byte, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	v, ok := ms.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (ms *MemoryStorage) Set(key string, value []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.entries[key] = append([]byte(nil), value...)
	return nil
}

func (ms *MemoryStorage) Remove(key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.entries, key)
	return nil
}
