// Package storage provides named byte blob stores used to persist machine
// state dumps and user flag registers per program.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned when a key has no stored data.
var ErrNotFound = errors.New("key not found")

// Store persists byte blobs by name.
type Store interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// FileStore stores every key as a file inside a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store that writes files into dir. An empty dir uses
// the current working directory.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Load reads the file of the given key.
func (s *FileStore) Load(key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}

// Save writes the data to the file of the given key, creating the directory
// if needed.
func (s *FileStore) Save(key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", s.dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid storage key '%s'", key)
	}
	return filepath.Join(s.dir, key), nil
}

// MemoryStore keeps all data in memory.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: map[string][]byte{},
	}
}

// Load returns a copy of the data stored for the key.
func (s *MemoryStore) Load(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of the data for the key.
func (s *MemoryStore) Save(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), data...)
	return nil
}

// Keys for the data persisted for a program.
const (
	userFlagsSuffix = ".uf"
	stateSuffix     = ".dmp"
)

// UserFlagsKey returns the key of the user flag registers of a program.
func UserFlagsKey(program string) string {
	return program + userFlagsSuffix
}

// StateKey returns the key of the state dump of a program.
func StateKey(program string) string {
	return program + stateSuffix
}
