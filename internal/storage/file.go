package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// implements Storage as a single JSON object on disk
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// creates a file-backed storage, the parent directory is created on demand
func NewFileStorage(path string) (*FileStorage, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config dir: %w", err)
		}

		path = filepath.Join(dir, "biolink", "storage.json")
	}

	return &FileStorage{path: path}, nil
}

// returns the backing file path
func (s *FileStorage) Path() string {
	return s.path
}

func (s *FileStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return "", false, err
	}

	value, ok := items[key]
	return value, ok, nil
}

func (s *FileStorage) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}

	items[key] = value
	return s.save(items)
}

func (s *FileStorage) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := items[key]; !ok {
		return nil
	}

	delete(items, key)
	return s.save(items)
}

func (s *FileStorage) Close() error {
	return nil
}

// reads the whole file; a missing or unparseable file reads as empty
func (s *FileStorage) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}

	items := make(map[string]string)
	if err := json.Unmarshal(data, &items); err != nil {
		return make(map[string]string), nil //nolint:nilerr // corrupt storage starts over
	}

	return items, nil
}

// writes via temp file + rename so readers never see a partial file
func (s *FileStorage) save(items map[string]string) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode storage: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create storage dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".storage-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // already renamed on success

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return fmt.Errorf("failed to write storage: %w", err)
	}

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close() //nolint:errcheck,gosec // chmod error takes precedence
		return fmt.Errorf("failed to set storage permissions: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace storage file: %w", err)
	}

	return nil
}
