// Package filestore persists session values in a local JSON file.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/target/catalog-admin/internal/ports"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

var _ ports.KVStore = (*KVStore)(nil)

// KVStore keeps all values in one JSON object on disk. Every write
// rewrites the file through a temp file and rename. A file that does not
// decode is deleted and reads as empty.
type KVStore struct {
	path string
	mu   sync.Mutex
}

// NewKVStore returns a KVStore backed by path. The file and its directory
// are created on first write.
func NewKVStore(path string) *KVStore {
	return &KVStore{path: path}
}

// Path returns the backing file.
func (s *KVStore) Path() string { return s.path }

// Get returns the value for key or ports.ErrKeyNotFound.
func (s *KVStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return "", err
	}
	v, ok := data[key]
	if !ok {
		return "", ports.ErrKeyNotFound
	}
	return v, nil
}

// Set stores value under key.
func (s *KVStore) Set(_ context.Context, key, value string) error {
	if key == "" {
		return errors.New("filestore set: key cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	data[key] = value
	return s.save(data)
}

// Remove deletes key. The file is removed once it holds no keys.
func (s *KVStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	if len(data) == 0 {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			return fmt.Errorf("filestore remove: %w", rmErr)
		}
		return nil
	}
	return s.save(data)
}

func (s *KVStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filestore read: %w", err)
	}
	data := map[string]string{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("filestore discard undecodable %s: %w", s.path, errors.Join(err, rmErr))
		}
		return map[string]string{}, nil
	}
	return data, nil
}

func (s *KVStore) save(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore encode: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("filestore mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("filestore temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func(cause error) error {
		_ = tmp.Close()
		return errors.Join(cause, os.Remove(tmpName))
	}

	if err := tmp.Chmod(fileMode); err != nil {
		return cleanup(fmt.Errorf("filestore chmod: %w", err))
	}
	if _, err := tmp.Write(raw); err != nil {
		return cleanup(fmt.Errorf("filestore write: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(fmt.Errorf("filestore close: %w", err), os.Remove(tmpName))
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Join(fmt.Errorf("filestore rename: %w", err), os.Remove(tmpName))
	}
	return nil
}
