// Package snapshot persists the entire local record collection as a single
// serialized blob: read once at startup, rewritten in full after every
// successful save or delete. There is no incremental format and no schema
// versioning.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/raido/internal/models"
)

// File is a snapshot blob at a fixed path. Records are stored as a JSON
// array so the local store's insertion order survives a round-trip.
type File struct {
	path string
}

// New returns a snapshot file handle. The parent directory is created if it
// does not exist; the file itself is created on first Write.
func New(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: mkdir: %w", err)
	}
	return &File{path: abs}, nil
}

// Path returns the absolute path of the snapshot file.
func (f *File) Path() string { return f.path }

// Load reads the whole collection. A missing file is an empty collection,
// not an error.
func (f *File) Load() ([]models.LocationRecord, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot: read: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var records []models.LocationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	return records, nil
}

// Write atomically replaces the snapshot: tmp file → fsync → rename.
func (f *File) Write(records []models.LocationRecord) error {
	if records == nil {
		records = []models.LocationRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".raido-tmp-*")
	if err != nil {
		return fmt.Errorf("snapshot: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("snapshot: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("snapshot: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("snapshot: rename: %w", err)
	}
	success = true
	return nil
}
