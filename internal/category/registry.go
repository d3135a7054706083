// Package category keeps the authoritative list of category names. The
// list lives in the settings store, independent of the notes referencing
// it, so a category may exist with no notes.
package category

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/starford/inkpad/internal/apperr"
	"github.com/starford/inkpad/internal/settings"
)

// SettingsKey is the settings key holding the category array.
const SettingsKey = "_categories"

// Registry reads and writes the category list. It only touches the
// registry itself; cascading to notes is the note service's job.
type Registry struct {
	store settings.Store
	mu    sync.Mutex
}

// NewRegistry creates a registry persisted in store.
func NewRegistry(store settings.Store) *Registry {
	return &Registry{store: store}
}

// Find returns the category names sorted alphabetically.
func (r *Registry) Find(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// Has reports whether name exists (exact, case-sensitive match).
func (r *Registry) Has(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names, err := r.load()
	if err != nil {
		return false, err
	}
	return slices.Contains(names, name), nil
}

// Add appends name and persists the sorted list.
func (r *Registry) Add(_ context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	names, err := r.load()
	if err != nil {
		return err
	}
	if slices.Contains(names, name) {
		return fmt.Errorf("%w: category %q", apperr.ErrAlreadyExists, name)
	}
	return r.save(append(names, name))
}

// Rename replaces oldName with newName.
func (r *Registry) Rename(_ context.Context, oldName, newName string) error {
	if err := validateName(newName); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	names, err := r.load()
	if err != nil {
		return err
	}
	i := slices.Index(names, oldName)
	if i < 0 {
		return fmt.Errorf("%w: category %q", apperr.ErrNotFound, oldName)
	}
	if oldName != newName && slices.Contains(names, newName) {
		return fmt.Errorf("%w: category %q", apperr.ErrAlreadyExists, newName)
	}
	names[i] = newName
	return r.save(names)
}

// Remove deletes name from the registry.
func (r *Registry) Remove(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names, err := r.load()
	if err != nil {
		return err
	}
	i := slices.Index(names, name)
	if i < 0 {
		return fmt.Errorf("%w: category %q", apperr.ErrNotFound, name)
	}
	return r.save(slices.Delete(names, i, i+1))
}

func (r *Registry) load() ([]string, error) {
	var names []string
	if _, err := r.store.Get(SettingsKey, &names); err != nil {
		return nil, err
	}
	// Hand-edited files may carry duplicates; the registry is a set.
	slices.Sort(names)
	return slices.Compact(names), nil
}

func (r *Registry) save(names []string) error {
	slices.Sort(names)
	if names == nil {
		names = []string{}
	}
	return r.store.Set(SettingsKey, names)
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: category name is empty", apperr.ErrInvalidArgument)
	}
	return nil
}
