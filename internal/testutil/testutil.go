// Package testutil provides shared test helpers for setting up stores,
// settings files and vault directories.
package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/inkpad/internal/category"
	"github.com/starford/inkpad/internal/notestore"
	"github.com/starford/inkpad/internal/settings"
	"github.com/starford/inkpad/internal/storage"
)

// TestStore creates a temporary SQLite note store that is automatically cleaned up.
func TestStore(t *testing.T, opts ...notestore.Option) *notestore.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "inkpad-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	s, err := notestore.Open(dbFile.Name(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestSettings creates a settings file in a temp directory.
func TestSettings(t *testing.T) *settings.File {
	t.Helper()
	return settings.NewFile(filepath.Join(t.TempDir(), "settings.json"))
}

// TestRegistry creates a category registry seeded with names.
func TestRegistry(t *testing.T, names ...string) *category.Registry {
	t.Helper()
	r := category.NewRegistry(TestSettings(t))
	for _, n := range names {
		if err := r.Add(t.Context(), n); err != nil {
			t.Fatal(err)
		}
	}
	return r
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// Clock returns a time source that advances one second per call.
func Clock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}
