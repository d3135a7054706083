// Package settings provides the key-value settings file the category
// registry persists into.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/starford/inkpad/internal/apperr"
	"github.com/starford/inkpad/internal/storage"
)

// Store is a small key-value store holding JSON values.
type Store interface {
	// Get decodes the value under key into dst. It reports false when the
	// key is absent.
	Get(key string, dst any) (bool, error)
	// Set encodes v and persists it under key.
	Set(key string, v any) error
}

// File is a Store backed by a single JSON object on disk. Every call goes
// to disk so that edits made by other tools are picked up.
type File struct {
	path string
	mu   sync.Mutex
}

// Verify *File satisfies Store at compile time.
var _ Store = (*File)(nil)

// NewFile returns a settings store for path. The file is created on the
// first Set.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the settings file location.
func (f *File) Path() string {
	return f.path
}

// Get implements Store.
func (f *File) Get(key string, dst any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return false, err
	}
	raw, ok := values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, apperr.Storage(fmt.Sprintf("settings: decode %q", key), err)
	}
	return true, nil
}

// Set implements Store.
func (f *File) Set(key string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("settings: encode %q: %w", key, err)
	}
	values[key] = raw

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: encode file: %w", err)
	}
	if err := storage.WriteFileAtomic(f.path, data); err != nil {
		return apperr.Storage("settings: write", err)
	}
	return nil
}

func (f *File) load() (map[string]json.RawMessage, error) {
	values := make(map[string]json.RawMessage)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, apperr.Storage("settings: read", err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, apperr.Storage("settings: parse", err)
	}
	return values, nil
}
