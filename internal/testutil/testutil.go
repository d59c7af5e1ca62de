// Package testutil provides shared test helpers for setting up stores and caches.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/places"
	"github.com/starford/raido/internal/snapshot"
	"github.com/starford/raido/internal/store"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestLocal creates a local store backed by a snapshot file in a temporary
// directory. The snapshot path is returned for tests that poke at the file.
func TestLocal(t *testing.T) (*store.Local, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "locations.json")
	snap, err := snapshot.New(path)
	if err != nil {
		t.Fatal(err)
	}
	local, err := store.NewLocal(snap, Logger())
	if err != nil {
		t.Fatal(err)
	}
	return local, path
}

// TestCache creates a temporary SQLite places cache that is automatically
// cleaned up.
func TestCache(t *testing.T) *places.Cache {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	cache, err := places.OpenCache(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}
